package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedWorld() *World {
	w := &World{
		Cities: []*City{
			{ID: 1, Name: "Veles"},
			{ID: 2, Name: "Ostrog"},
		},
		Routes: []*Route{
			{ID: 10, FromCityID: 1, ToCityID: 2},
		},
		Rules: []*EconomyRule{
			{CityID: 1, ItemID: 1, Kind: RuleProduction, AmountPerTick: 5},
			{CityID: 1, ItemID: 2, Kind: RuleConsumption, AmountPerTick: 2},
		},
	}
	w.BuildIndexes()
	return w
}

func TestIndexLookups(t *testing.T) {
	w := indexedWorld()

	require.NotNil(t, w.CityByID(1))
	assert.Equal(t, "Veles", w.CityByID(1).Name)
	assert.Nil(t, w.CityByID(42))
	assert.NotNil(t, w.RouteByID(10))
	assert.Len(t, w.RulesForCity(1), 2)
	assert.Empty(t, w.RulesForCity(2))
}

func TestUpsertCityUpdatesInPlace(t *testing.T) {
	w := indexedWorld()

	w.UpsertCity(&City{ID: 1, Name: "Veles", Population: 5000})
	assert.Len(t, w.Cities, 2, "upsert of an existing id does not grow the slice")
	assert.Equal(t, int64(5000), w.CityByID(1).Population)

	w.UpsertCity(&City{ID: 3, Name: "Tarn"})
	assert.Len(t, w.Cities, 3)
	assert.NotNil(t, w.CityByID(3))
}

func TestRemoveCity(t *testing.T) {
	w := indexedWorld()

	assert.True(t, w.RemoveCity(2))
	assert.Nil(t, w.CityByID(2))
	assert.Len(t, w.Cities, 1)
	assert.False(t, w.RemoveCity(2), "second delete is a no-op")
}

func TestReplaceCityRules(t *testing.T) {
	w := indexedWorld()

	w.ReplaceCityRules(1, []*EconomyRule{
		{CityID: 1, ItemID: 9, Kind: RuleProduction, AmountPerTick: 1},
	})
	rules := w.RulesForCity(1)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(9), rules[0].ItemID)
	assert.Len(t, w.Rules, 1)

	w.ReplaceCityRules(1, nil)
	assert.Empty(t, w.RulesForCity(1))
}
