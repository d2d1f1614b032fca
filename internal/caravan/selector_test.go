package caravan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezenin/tradeway/internal/economy"
	"github.com/mezenin/tradeway/internal/world"
)

var testItems = []*world.Item{
	{ID: 1, Name: "Grain"},
	{ID: 2, Name: "Iron"},
	{ID: 3, Name: "Cloth"},
}

func storagePair(t *testing.T, srcStock, dstStock map[int64]float64) (*economy.CityStorage, *economy.CityStorage) {
	t.Helper()
	var records []world.InventoryRecord
	for itemID, amount := range srcStock {
		records = append(records, world.InventoryRecord{CityID: 1, ItemID: itemID, Amount: amount})
	}
	for itemID, amount := range dstStock {
		records = append(records, world.InventoryRecord{CityID: 2, ItemID: itemID, Amount: amount})
	}
	store := economy.NewInventoryStore(records)
	return store.Storage(1, 10000), store.Storage(2, 10000)
}

func consumptionRules(itemIDs ...int64) []*world.EconomyRule {
	var rules []*world.EconomyRule
	for _, id := range itemIDs {
		rules = append(rules, &world.EconomyRule{CityID: 2, ItemID: id, Kind: world.RuleConsumption, AmountPerTick: 1})
	}
	return rules
}

func TestSelectCargoNoCandidates(t *testing.T) {
	src, dst := storagePair(t, map[int64]float64{1: 49.9, 2: 10}, nil)
	sel := NewSelector(1)
	catalog := economy.NewCatalog(testItems)

	assert.Nil(t, sel.SelectCargo(src, dst, catalog, nil),
		"nothing above the load threshold means an empty run")
}

func TestSelectCargoDemandDominatesTransit(t *testing.T) {
	// Item 1 is demanded and below the demand ceiling; item 2 is only
	// eligible as plain export. Demand must win every single time.
	src, dst := storagePair(t,
		map[int64]float64{1: 60, 2: 500},
		map[int64]float64{1: 100, 2: 0},
	)
	catalog := economy.NewCatalog(testItems)
	rules := consumptionRules(1)

	sel := NewSelector(7)
	for i := 0; i < 200; i++ {
		item := sel.SelectCargo(src, dst, catalog, rules)
		require.NotNil(t, item)
		require.Equal(t, int64(1), item.ID,
			"a non-empty demand tier fully dominates the transit tier")
	}
}

func TestSelectCargoDemandCeilingDisqualifies(t *testing.T) {
	// The demanded item sits at its ceiling; the transit item takes over.
	src, dst := storagePair(t,
		map[int64]float64{1: 60, 2: 60},
		map[int64]float64{1: 150, 2: 10},
	)
	catalog := economy.NewCatalog(testItems)

	sel := NewSelector(7)
	item := sel.SelectCargo(src, dst, catalog, consumptionRules(1))
	require.NotNil(t, item)
	assert.Equal(t, int64(2), item.ID)
}

func TestSelectCargoTransitCeilingBlocksSaturatedDest(t *testing.T) {
	src, dst := storagePair(t,
		map[int64]float64{1: 500},
		map[int64]float64{1: 70},
	)
	catalog := economy.NewCatalog(testItems)

	sel := NewSelector(7)
	assert.Nil(t, sel.SelectCargo(src, dst, catalog, nil),
		"undemanded goods stop flowing at the transit ceiling")
}

func TestSelectCargoDeterministicWithSeed(t *testing.T) {
	catalog := economy.NewCatalog(testItems)
	rules := consumptionRules(1, 2, 3)

	run := func(seed int64) []int64 {
		src, dst := storagePair(t,
			map[int64]float64{1: 200, 2: 200, 3: 200},
			nil,
		)
		sel := NewSelector(seed)
		var picks []int64
		for i := 0; i < 50; i++ {
			item := sel.SelectCargo(src, dst, catalog, rules)
			require.NotNil(t, item)
			picks = append(picks, item.ID)
		}
		return picks
	}

	assert.Equal(t, run(42), run(42), "same seed, same choice sequence")
}
