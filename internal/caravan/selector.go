package caravan

import (
	"math/rand"

	"github.com/mezenin/tradeway/internal/economy"
	"github.com/mezenin/tradeway/internal/world"
)

// Cargo selection thresholds, in goods units.
const (
	// MinLoadThreshold is the minimum source stock before an item is worth
	// hauling at all.
	MinLoadThreshold = 50.0
	// DemandCeiling stops deliveries of explicitly demanded goods once the
	// destination is well supplied.
	DemandCeiling = 150.0
	// TransitCeiling caps blind exports of goods the destination never
	// asked for.
	TransitCeiling = 70.0
)

// Selector picks what a caravan should carry. It draws from its own seeded
// random source, so runs with the same seed and world state make identical
// choices.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector with a deterministic random source.
func NewSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// SelectCargo picks the best item to haul from src to dst, or nil when the
// caravan should travel empty.
//
// Candidates are items with at least MinLoadThreshold units at the source.
// Demanded goods (items in the destination's consumption rules, still under
// DemandCeiling there) dominate; otherwise anything still under
// TransitCeiling at the destination qualifies as plain export. The winner
// within a tier is uniform random.
func (s *Selector) SelectCargo(src, dst *economy.CityStorage, catalog *economy.Catalog, destRules []*world.EconomyRule) *world.Item {
	demanded := make(map[int64]bool)
	for _, r := range destRules {
		if r.Kind == world.RuleConsumption {
			demanded[r.ItemID] = true
		}
	}

	var demandMatches, transitMatches []*world.Item
	for _, item := range catalog.Items() {
		if src.GetAmount(item.ID) < MinLoadThreshold {
			continue
		}
		destAmount := dst.GetAmount(item.ID)
		if demanded[item.ID] && destAmount < DemandCeiling {
			demandMatches = append(demandMatches, item)
		} else if destAmount < TransitCeiling {
			transitMatches = append(transitMatches, item)
		}
	}

	if len(demandMatches) > 0 {
		return demandMatches[s.rng.Intn(len(demandMatches))]
	}
	if len(transitMatches) > 0 {
		return transitMatches[s.rng.Intn(len(transitMatches))]
	}
	return nil
}
