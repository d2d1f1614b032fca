package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mezenin/tradeway/internal/world"
)

func testWorld() *world.World {
	w := &world.World{
		Cities: []*world.City{
			{ID: 1, Name: "Veles", MaxStorage: 1000},
			{ID: 2, Name: "Ostrog", MaxStorage: 50},
		},
		Items: []*world.Item{
			{ID: 1, Name: "Grain"},
			{ID: 2, Name: "Iron"},
		},
		Rules: []*world.EconomyRule{
			{CityID: 1, ItemID: 1, Kind: world.RuleProduction, AmountPerTick: 10},
			{CityID: 1, ItemID: 2, Kind: world.RuleConsumption, AmountPerTick: 3},
			{CityID: 2, ItemID: 2, Kind: world.RuleProduction, AmountPerTick: 40},
		},
	}
	w.BuildIndexes()
	return w
}

func TestEngineTickAppliesAllCities(t *testing.T) {
	w := testWorld()
	store := NewInventoryStore([]world.InventoryRecord{{CityID: 1, ItemID: 2, Amount: 5}})
	eng := NewEngine(w, store)

	eng.Tick()

	assert.Equal(t, 10.0, store.Storage(1, 1000).GetAmount(1))
	assert.Equal(t, 2.0, store.Storage(1, 1000).GetAmount(2))
	assert.Equal(t, 40.0, store.Storage(2, 50).GetAmount(2))

	// The small warehouse clamps the second production grant.
	eng.Tick()
	assert.Equal(t, 50.0, store.Storage(2, 50).GetAmount(2))
}

func TestEngineToleratesUnknownItemRule(t *testing.T) {
	w := testWorld()
	w.Rules = append(w.Rules, &world.EconomyRule{
		CityID: 1, ItemID: 999, Kind: world.RuleProduction, AmountPerTick: 50,
	})
	w.BuildIndexes()

	store := NewInventoryStore(nil)
	eng := NewEngine(w, store)
	eng.Tick()

	assert.Equal(t, 0.0, store.Storage(1, 1000).GetAmount(999), "unknown item is a no-op")
	assert.Equal(t, 10.0, store.Storage(1, 1000).GetAmount(1), "other rules still run")
}

func TestCatalogStableOrder(t *testing.T) {
	catalog := NewCatalog([]*world.Item{
		{ID: 3, Name: "Iron"},
		{ID: 1, Name: "Grain"},
		{ID: 2, Name: "Timber"},
	})

	ids := make([]int64, 0, catalog.Len())
	for _, it := range catalog.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, "Timber", catalog.ByID(2).Name)
	assert.Nil(t, catalog.ByID(99))
}
