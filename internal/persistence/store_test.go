package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezenin/tradeway/internal/world"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveCountry(&world.Country{ID: 1, Name: "Veria", Color: "#aa3311", CapitalCityID: 10}))
	require.NoError(t, s.SaveCity(&world.City{ID: 10, Name: "Harrow", Description: "river port", X: 120, Y: 340, MaxStorage: 1000, CountryID: 1, Population: 4200}))
	require.NoError(t, s.SaveCity(&world.City{ID: 11, Name: "Eastwick", X: 900, Y: 410, MaxStorage: 500, CountryID: 1}))
	require.NoError(t, s.SaveItem(&world.Item{ID: 1, Name: "grain", IconKey: "grain", BasePrice: 2.5}))
	require.NoError(t, s.SaveItem(&world.Item{ID: 2, Name: "iron", IconKey: "iron", BasePrice: 8}))
	require.NoError(t, s.SaveTransport(&world.TransportProfile{ID: 1, Name: "wagon", CapacityUnits: 10, BaseSpeed: 50, RenderHint: "cart"}))

	route := &world.Route{
		ID:          5,
		Name:        "river road",
		FromCityID:  10,
		ToCityID:    11,
		Kind:        world.RouteTrack,
		Waypoints:   [][2]float64{{400, 380}, {650, 400}},
		SpeedCoeff:  1.2,
		UnitCount:   2,
		TransportID: 1,
	}
	require.NoError(t, s.SaveRoute(route))

	w, err := s.LoadWorld()
	require.NoError(t, err)

	require.Len(t, w.Cities, 2)
	harrow := w.CityByID(10)
	require.NotNil(t, harrow)
	assert.Equal(t, "Harrow", harrow.Name)
	assert.Equal(t, int64(4200), harrow.Population)
	assert.Equal(t, 1000.0, harrow.MaxStorage)

	got := w.RouteByID(5)
	require.NotNil(t, got)
	assert.Equal(t, route.Waypoints, got.Waypoints)
	assert.Equal(t, 1.2, got.SpeedCoeff)
	assert.Equal(t, world.RouteTrack, got.Kind)

	require.NotNil(t, w.ItemByID(2))
	assert.Equal(t, 8.0, w.ItemByID(2).BasePrice)
	require.NotNil(t, w.TransportByID(1))
	assert.Equal(t, 10, w.TransportByID(1).CapacityUnits)
	require.NotNil(t, w.CountryByID(1))
	assert.Equal(t, int64(10), w.CountryByID(1).CapitalCityID)
}

func TestCityEconomyPreservesOrder(t *testing.T) {
	s := openTestStore(t)

	rules := []*world.EconomyRule{
		{CityID: 10, ItemID: 3, Kind: world.RuleProduction, AmountPerTick: 4},
		{CityID: 10, ItemID: 1, Kind: world.RuleConsumption, AmountPerTick: 2},
		{CityID: 10, ItemID: 2, Kind: world.RuleProduction, AmountPerTick: 1},
	}
	require.NoError(t, s.SaveCityEconomy(10, rules))

	w, err := s.LoadWorld()
	require.NoError(t, err)
	loaded := w.RulesForCity(10)
	require.Len(t, loaded, 3)
	for i, r := range rules {
		assert.Equal(t, r.ItemID, loaded[i].ItemID, "rule %d out of order", i)
		assert.Equal(t, r.Kind, loaded[i].Kind)
		assert.Equal(t, r.AmountPerTick, loaded[i].AmountPerTick)
	}

	// Replacing the set discards the old rows entirely.
	require.NoError(t, s.SaveCityEconomy(10, rules[:1]))
	w, err = s.LoadWorld()
	require.NoError(t, err)
	require.Len(t, w.RulesForCity(10), 1)
	assert.Equal(t, int64(3), w.RulesForCity(10)[0].ItemID)
}

func TestSaveAllInventoryReplacesSnapshot(t *testing.T) {
	s := openTestStore(t)

	first := []world.InventoryRecord{
		{CityID: 10, ItemID: 1, Amount: 120},
		{CityID: 10, ItemID: 2, Amount: 30},
		{CityID: 11, ItemID: 1, Amount: 55},
	}
	require.NoError(t, s.SaveAllInventory(first))

	w, err := s.LoadWorld()
	require.NoError(t, err)
	assert.Len(t, w.Inventory, 3)

	second := []world.InventoryRecord{{CityID: 10, ItemID: 1, Amount: 99}}
	require.NoError(t, s.SaveAllInventory(second))

	w, err = s.LoadWorld()
	require.NoError(t, err)
	require.Len(t, w.Inventory, 1)
	assert.Equal(t, 99.0, w.Inventory[0].Amount)
}

func TestDeleteCityCascades(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveCity(&world.City{ID: 10, Name: "Harrow", MaxStorage: 1000}))
	require.NoError(t, s.SaveCity(&world.City{ID: 11, Name: "Eastwick", MaxStorage: 500}))
	require.NoError(t, s.SaveRoute(&world.Route{ID: 5, FromCityID: 10, ToCityID: 11, Kind: world.RouteTrack, UnitCount: 1, TransportID: 1}))
	require.NoError(t, s.SaveCityEconomy(10, []*world.EconomyRule{
		{CityID: 10, ItemID: 1, Kind: world.RuleProduction, AmountPerTick: 4},
	}))
	require.NoError(t, s.SaveAllInventory([]world.InventoryRecord{
		{CityID: 10, ItemID: 1, Amount: 40},
		{CityID: 11, ItemID: 1, Amount: 20},
	}))

	require.NoError(t, s.DeleteCity(10))

	w, err := s.LoadWorld()
	require.NoError(t, err)
	assert.Nil(t, w.CityByID(10))
	assert.NotNil(t, w.CityByID(11))
	assert.Nil(t, w.RouteByID(5), "routes touching a deleted city go with it")
	assert.Empty(t, w.RulesForCity(10))
	require.Len(t, w.Inventory, 1)
	assert.Equal(t, int64(11), w.Inventory[0].CityID)
}

func TestMeta(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetMeta("last_game_time")
	assert.Error(t, err, "missing keys report an error")

	require.NoError(t, s.SetMeta("last_game_time", "3600"))
	require.NoError(t, s.SetMeta("last_game_time", "7200"))
	v, err := s.GetMeta("last_game_time")
	require.NoError(t, err)
	assert.Equal(t, "7200", v)
}
