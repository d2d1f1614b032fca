package economy

import (
	"log/slog"

	"github.com/mezenin/tradeway/internal/world"
)

// Engine applies every city's economy rules once per economy tick.
// There is a single capacity policy: ProcessCycle's restock ceiling plus
// the capacity-clamped add. The engine itself adds no second cap.
type Engine struct {
	World *world.World
	Store *InventoryStore
}

// NewEngine wires the economy engine to the loaded world and its inventory.
func NewEngine(w *world.World, store *InventoryStore) *Engine {
	return &Engine{World: w, Store: store}
}

// Tick runs one production/consumption cycle for every city. Rules that
// reference unknown cities or items are tolerated as no-ops so the rest of
// the world keeps running.
func (e *Engine) Tick() {
	for _, city := range e.World.Cities {
		rules := e.World.RulesForCity(city.ID)
		if len(rules) == 0 {
			continue
		}

		valid := rules[:0:0]
		for _, r := range rules {
			if e.World.ItemByID(r.ItemID) == nil {
				slog.Debug("economy rule references unknown item, skipping",
					"city_id", r.CityID, "item_id", r.ItemID)
				continue
			}
			valid = append(valid, r)
		}

		e.Store.Storage(city.ID, city.MaxStorage).ProcessCycle(valid)
	}
}
