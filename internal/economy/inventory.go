package economy

import (
	"sort"

	"github.com/mezenin/tradeway/internal/world"
)

// RestockCeiling throttles production: a production rule only grants output
// while the city's stock of that item is below this many units, and grants
// are clamped so the stock never passes it. Independent of warehouse space.
const RestockCeiling = 200.0

type invKey struct {
	cityID int64
	itemID int64
}

// InventoryStore owns every city's stock in one map keyed by (city, item).
// CityStorage views hand out scoped access; nothing else holds inventory
// state, so there is no aliasing between cities.
type InventoryStore struct {
	records map[invKey]float64
}

// NewInventoryStore creates a store seeded with the loaded records.
// Negative amounts in corrupt input are floored at zero.
func NewInventoryStore(initial []world.InventoryRecord) *InventoryStore {
	s := &InventoryStore{records: make(map[invKey]float64, len(initial))}
	for _, rec := range initial {
		if rec.Amount > 0 {
			s.records[invKey{rec.CityID, rec.ItemID}] += rec.Amount
		}
	}
	return s
}

// Storage returns a city-scoped view bound to the given capacity.
func (s *InventoryStore) Storage(cityID int64, maxCapacity float64) *CityStorage {
	return &CityStorage{store: s, cityID: cityID, maxCapacity: maxCapacity}
}

// Snapshot returns all records sorted by (city, item), suitable for the
// periodic persistence flush. Zero-amount entries are skipped.
func (s *InventoryStore) Snapshot() []world.InventoryRecord {
	out := make([]world.InventoryRecord, 0, len(s.records))
	for k, amount := range s.records {
		if amount <= 0 {
			continue
		}
		out = append(out, world.InventoryRecord{CityID: k.cityID, ItemID: k.itemID, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CityID != out[j].CityID {
			return out[i].CityID < out[j].CityID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// DropCity removes every record of a deleted city.
func (s *InventoryStore) DropCity(cityID int64) {
	for k := range s.records {
		if k.cityID == cityID {
			delete(s.records, k)
		}
	}
}

// CityStorage is a bounded per-city inventory view. All operations are
// total: malformed ids and oversize requests degrade to zero-effect
// results, never errors.
type CityStorage struct {
	store       *InventoryStore
	cityID      int64
	maxCapacity float64
}

// CityID returns the owning city's id.
func (cs *CityStorage) CityID() int64 { return cs.cityID }

// MaxCapacity returns the total-volume bound across all items.
func (cs *CityStorage) MaxCapacity() float64 { return cs.maxCapacity }

// GetAmount returns the current stock of one item, 0 if none.
func (cs *CityStorage) GetAmount(itemID int64) float64 {
	return cs.store.records[invKey{cs.cityID, itemID}]
}

// GetTotalVolume sums all item amounts held by this city.
func (cs *CityStorage) GetTotalVolume() float64 {
	total := 0.0
	for k, amount := range cs.store.records {
		if k.cityID == cs.cityID {
			total += amount
		}
	}
	return total
}

// AddItems stores up to amount units, clamped to the remaining capacity.
// Returns how much was actually added; 0 means the warehouse is full (or
// the request was empty) and nothing changed.
func (cs *CityStorage) AddItems(itemID int64, amount float64) float64 {
	spaceLeft := cs.maxCapacity - cs.GetTotalVolume()
	if spaceLeft < 0 {
		spaceLeft = 0
	}
	actual := amount
	if actual > spaceLeft {
		actual = spaceLeft
	}
	if actual <= 0 {
		return 0
	}
	cs.store.records[invKey{cs.cityID, itemID}] += actual
	return actual
}

// TakeItems removes up to amount units, floored at the available stock.
// Returns how much was actually taken.
func (cs *CityStorage) TakeItems(itemID int64, amount float64) float64 {
	key := invKey{cs.cityID, itemID}
	current := cs.store.records[key]
	if current <= 0 || amount <= 0 {
		return 0
	}
	actual := amount
	if actual > current {
		actual = current
	}
	cs.store.records[key] = current - actual
	return actual
}

// ProcessCycle applies one economy tick's worth of rules, in order. Later
// rules observe the effect of earlier ones. Production fills stock up to
// the restock ceiling, never past it, and is still clamped by warehouse
// capacity; consumption floors at zero.
func (cs *CityStorage) ProcessCycle(rules []*world.EconomyRule) {
	for _, rule := range rules {
		switch rule.Kind {
		case world.RuleProduction:
			current := cs.GetAmount(rule.ItemID)
			if current >= RestockCeiling {
				continue
			}
			grant := rule.AmountPerTick
			if current+grant > RestockCeiling {
				grant = RestockCeiling - current
			}
			cs.AddItems(rule.ItemID, grant)
		case world.RuleConsumption:
			cs.TakeItems(rule.ItemID, rule.AmountPerTick)
		}
	}
}

// GetSaveData snapshots this city's records for persistence.
func (cs *CityStorage) GetSaveData() []world.InventoryRecord {
	var out []world.InventoryRecord
	for k, amount := range cs.store.records {
		if k.cityID == cs.cityID && amount > 0 {
			out = append(out, world.InventoryRecord{CityID: k.cityID, ItemID: k.itemID, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
