// Package economy implements city inventories and the production/consumption
// tick that drives them.
package economy

import (
	"sort"

	"github.com/mezenin/tradeway/internal/world"
)

// Catalog is the registry of tradeable goods. Iteration order is stable
// (ascending item id) so decisions made over the catalog are reproducible.
type Catalog struct {
	items []*world.Item
	byID  map[int64]*world.Item
}

// NewCatalog builds a catalog from loaded items.
func NewCatalog(items []*world.Item) *Catalog {
	sorted := make([]*world.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int64]*world.Item, len(sorted))
	for _, it := range sorted {
		byID[it.ID] = it
	}
	return &Catalog{items: sorted, byID: byID}
}

// ByID returns nil for unknown ids.
func (c *Catalog) ByID(id int64) *world.Item { return c.byID[id] }

// Items returns all goods in stable order. Callers must not mutate.
func (c *Catalog) Items() []*world.Item { return c.items }

// Len returns the number of registered goods.
func (c *Catalog) Len() int { return len(c.items) }
