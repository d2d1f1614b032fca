// Command worldgen seeds a demo world into a fresh SQLite store: countries,
// cities placed by terrain noise, routes between neighbors, goods, transport
// types and per-city economy rules. Deterministic for a given seed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/mezenin/tradeway/internal/persistence"
	"github.com/mezenin/tradeway/internal/world"
)

const (
	mapWidth  = 2000.0
	mapHeight = 1400.0
	cityCount = 12
	// Cities closer than this get a route between them.
	neighborRange = 700.0
)

var cityNames = []string{
	"Veles", "Ostrog", "Belgorka", "Tarn", "Svetlograd", "Kamenets",
	"Yarmarka", "Lukomorye", "Pristan", "Zarechye", "Volnov", "Torzhok",
}

func main() {
	dbPath := flag.String("db", "data/world.db", "path to the world database to seed")
	seed := flag.Int64("seed", 42, "generation seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	store, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))
	elevNoise := opensimplex.NewNormalized(*seed)

	items := seedItems(store)
	transports := seedTransports(store)
	countries := seedCountries(store)
	cities := seedCities(store, rng, elevNoise, countries)
	routeCount := seedRoutes(store, rng, cities, transports)
	seedEconomy(store, rng, cities, items)

	slog.Info("demo world seeded",
		"path", *dbPath,
		"seed", *seed,
		"countries", len(countries),
		"cities", len(cities),
		"routes", routeCount,
		"items", len(items),
	)
	fmt.Printf("Seeded %d cities and %d routes into %s\n", len(cities), routeCount, *dbPath)
}

func seedItems(store *persistence.Store) []*world.Item {
	items := []*world.Item{
		{ID: 1, Name: "Grain", IconKey: "grain", BasePrice: 2},
		{ID: 2, Name: "Timber", IconKey: "timber", BasePrice: 3},
		{ID: 3, Name: "Iron", IconKey: "iron", BasePrice: 5},
		{ID: 4, Name: "Cloth", IconKey: "cloth", BasePrice: 6},
		{ID: 5, Name: "Salt", IconKey: "salt", BasePrice: 4},
		{ID: 6, Name: "Wine", IconKey: "wine", BasePrice: 8},
	}
	for _, it := range items {
		if err := store.SaveItem(it); err != nil {
			slog.Error("failed to save item", "item", it.Name, "error", err)
		}
	}
	return items
}

func seedTransports(store *persistence.Store) []*world.TransportProfile {
	transports := []*world.TransportProfile{
		{ID: 1, Name: "Trade wagon", CapacityUnits: 10, BaseSpeed: 50, RenderHint: "caravan"},
		{ID: 2, Name: "Trade ship", CapacityUnits: 25, BaseSpeed: 80, RenderHint: "ship"},
	}
	for _, t := range transports {
		if err := store.SaveTransport(t); err != nil {
			slog.Error("failed to save transport type", "transport", t.Name, "error", err)
		}
	}
	return transports
}

func seedCountries(store *persistence.Store) []*world.Country {
	countries := []*world.Country{
		{ID: 1, Name: "Severia", Color: "#4a6fa5"},
		{ID: 2, Name: "Polesye", Color: "#6b8e23"},
		{ID: 3, Name: "Yuzhny Krai", Color: "#b8860b"},
	}
	for _, c := range countries {
		if err := store.SaveCountry(c); err != nil {
			slog.Error("failed to save country", "country", c.Name, "error", err)
		}
	}
	return countries
}

// seedCities scatters cities, nudging candidate positions until the terrain
// noise reads as habitable land. Population follows elevation: lowland
// river cities grow larger.
func seedCities(store *persistence.Store, rng *rand.Rand, noise opensimplex.Noise, countries []*world.Country) []*world.City {
	cities := make([]*world.City, 0, cityCount)
	for i := 0; i < cityCount; i++ {
		var x, y, elev float64
		for tries := 0; tries < 100; tries++ {
			x = 100 + rng.Float64()*(mapWidth-200)
			y = 100 + rng.Float64()*(mapHeight-200)
			elev = noise.Eval2(x/600, y/600)
			if elev > 0.35 && elev < 0.8 {
				break
			}
		}

		population := int64(2000 + (1-elev)*30000 + rng.Float64()*8000)
		city := &world.City{
			ID:         int64(i + 1),
			Name:       cityNames[i%len(cityNames)],
			X:          math.Round(x),
			Y:          math.Round(y),
			MaxStorage: 1000,
			CountryID:  countries[i%len(countries)].ID,
			Population: population,
		}
		if err := store.SaveCity(city); err != nil {
			slog.Error("failed to save city", "city", city.Name, "error", err)
			continue
		}
		cities = append(cities, city)
	}
	return cities
}

func seedRoutes(store *persistence.Store, rng *rand.Rand, cities []*world.City, transports []*world.TransportProfile) int {
	routeID := int64(0)
	for i, from := range cities {
		for _, to := range cities[i+1:] {
			dist := math.Hypot(to.X-from.X, to.Y-from.Y)
			if dist > neighborRange {
				continue
			}
			routeID++

			kind := world.RouteTrack
			transport := transports[0]
			if rng.Float64() < 0.25 {
				kind = world.RouteWater
				transport = transports[1]
			}

			// One gentle midpoint bend so routes don't overlap visually.
			midX := (from.X+to.X)/2 + rng.Float64()*80 - 40
			midY := (from.Y+to.Y)/2 + rng.Float64()*80 - 40

			route := &world.Route{
				ID:          routeID,
				Name:        fmt.Sprintf("%s - %s", from.Name, to.Name),
				FromCityID:  from.ID,
				ToCityID:    to.ID,
				Kind:        kind,
				Waypoints:   [][2]float64{{math.Round(midX), math.Round(midY)}},
				SpeedCoeff:  0.8 + rng.Float64()*0.6,
				UnitCount:   1 + rng.Intn(3),
				TransportID: transport.ID,
			}
			if err := store.SaveRoute(route); err != nil {
				slog.Error("failed to save route", "route", route.Name, "error", err)
			}
		}
	}
	return int(routeID)
}

// seedEconomy gives every city a producer role for some goods and consumer
// demand for others, plus a starting stockpile of what it produces.
func seedEconomy(store *persistence.Store, rng *rand.Rand, cities []*world.City, items []*world.Item) {
	var inventory []world.InventoryRecord

	for _, city := range cities {
		perm := rng.Perm(len(items))
		produced := perm[:2]
		consumed := perm[2:4]

		var rules []*world.EconomyRule
		for _, idx := range produced {
			rules = append(rules, &world.EconomyRule{
				CityID:        city.ID,
				ItemID:        items[idx].ID,
				Kind:          world.RuleProduction,
				AmountPerTick: 2 + rng.Float64()*6,
			})
			inventory = append(inventory, world.InventoryRecord{
				CityID: city.ID,
				ItemID: items[idx].ID,
				Amount: 60 + rng.Float64()*80,
			})
		}
		for _, idx := range consumed {
			rules = append(rules, &world.EconomyRule{
				CityID:        city.ID,
				ItemID:        items[idx].ID,
				Kind:          world.RuleConsumption,
				AmountPerTick: 1 + rng.Float64()*3,
			})
		}

		if err := store.SaveCityEconomy(city.ID, rules); err != nil {
			slog.Error("failed to save economy rules", "city", city.Name, "error", err)
		}
	}

	if err := store.SaveAllInventory(inventory); err != nil {
		slog.Error("failed to save starting inventory", "error", err)
	}
}
