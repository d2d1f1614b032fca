package caravan

import (
	"log/slog"

	"github.com/mezenin/tradeway/internal/economy"
	"github.com/mezenin/tradeway/internal/world"
)

// Notifier receives best-effort hints that a city's displayed state changed.
// Implementations must not block the simulation step.
type Notifier interface {
	NotifyCityChanged(cityID int64)
}

// Coordinator executes a caravan's cycle-boundary event: unload everything
// at the destination, then decide and load new cargo at the source. Runs
// synchronously inside the single-threaded simulation step.
type Coordinator struct {
	Selector *Selector
	Catalog  *economy.Catalog
	Notifier Notifier
}

// Transfer performs one unload/load at the route's endpoints. Cargo the
// destination cannot accept is discarded, not returned to the source; the
// caravan always leaves the event with a clean slate before reloading.
func (c *Coordinator) Transfer(unit *Unit, src, dst *economy.CityStorage, destRules []*world.EconomyRule) {
	if unit.Loaded() {
		item, amount := unit.Unload()
		accepted := dst.AddItems(item.ID, amount)
		if accepted < amount {
			slog.Warn("destination full, undelivered cargo discarded",
				"city_id", dst.CityID(), "item", item.Name,
				"carried", amount, "accepted", accepted)
		} else {
			slog.Debug("cargo delivered",
				"city_id", dst.CityID(), "item", item.Name, "amount", accepted)
		}
	}

	if item := c.Selector.SelectCargo(src, dst, c.Catalog, destRules); item != nil {
		taken := src.TakeItems(item.ID, unit.Capacity())
		if taken > 0 {
			unit.Load(item, taken)
			slog.Debug("cargo loaded",
				"city_id", src.CityID(), "item", item.Name, "amount", taken)
		}
	}

	if c.Notifier != nil {
		c.Notifier.NotifyCityChanged(src.CityID())
		c.Notifier.NotifyCityChanged(dst.CityID())
	}
}
