// Package engine ties the world, economy and caravans together and drives
// them on a shared game clock.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mezenin/tradeway/internal/caravan"
	"github.com/mezenin/tradeway/internal/economy"
	"github.com/mezenin/tradeway/internal/world"
)

// Tick cadences, in game time. The global speed multiplier stretches or
// compresses both identically because callers pre-scale dt.
const (
	EconomyTickInterval = time.Second
	PersistInterval     = 30 * time.Second
)

// InventoryFlusher receives the periodic inventory snapshot. Implemented by
// the persistence store.
type InventoryFlusher interface {
	SaveAllInventory(records []world.InventoryRecord) error
}

// Simulation holds the complete runtime state and advances it step by step.
// All state is guarded by Mu: the engine loop and API handlers take it
// around every access, so economy and transfer logic never interleave.
type Simulation struct {
	Mu sync.Mutex

	World   *world.World
	Store   *economy.InventoryStore
	Catalog *economy.Catalog
	Econ    *economy.Engine
	Coord   *caravan.Coordinator
	Flusher InventoryFlusher

	// fleets maps route id to its live units. Rebuilt per route whenever
	// geometry, transport or unit count changes.
	fleets map[int64][]*caravan.Unit

	econAcc    time.Duration
	persistAcc time.Duration

	GameTime     time.Duration // total simulated time elapsed
	EconomyTicks uint64
}

// NewSimulation assembles a simulation from a loaded world. Caravans are
// not spawned yet; call SpawnAllRoutes once wiring is complete.
func NewSimulation(w *world.World, seed int64, notifier caravan.Notifier, flusher InventoryFlusher) *Simulation {
	store := economy.NewInventoryStore(w.Inventory)
	catalog := economy.NewCatalog(w.Items)

	return &Simulation{
		World:   w,
		Store:   store,
		Catalog: catalog,
		Econ:    economy.NewEngine(w, store),
		Coord: &caravan.Coordinator{
			Selector: caravan.NewSelector(seed),
			Catalog:  catalog,
			Notifier: notifier,
		},
		Flusher: flusher,
		fleets:  make(map[int64][]*caravan.Unit),
	}
}

// SpawnAllRoutes builds fleets for every route in the world.
func (s *Simulation) SpawnAllRoutes() {
	for _, r := range s.World.Routes {
		s.RespawnRoute(r.ID)
	}
}

// RespawnRoute tears down and recreates one route's caravans. Degenerate
// routes (missing endpoints, zero-length path, unknown transport) spawn
// nothing: the route stays on the map but moves no goods.
func (s *Simulation) RespawnRoute(routeID int64) {
	delete(s.fleets, routeID)

	route := s.World.RouteByID(routeID)
	if route == nil {
		return
	}

	path := s.World.RoutePath(route)
	if path == nil {
		slog.Warn("route endpoints not found, skipping spawn", "route_id", route.ID)
		return
	}
	profile := s.World.TransportByID(route.TransportID)
	sched, ok := caravan.BuildSchedule(route, profile, path.Length())
	if !ok {
		slog.Warn("route has no usable schedule, skipping spawn",
			"route_id", route.ID, "transport_id", route.TransportID, "path_length", path.Length())
		return
	}
	if sched.UnitCount <= 0 {
		return
	}

	units := make([]*caravan.Unit, 0, sched.UnitCount)
	for i := 0; i < sched.UnitCount; i++ {
		units = append(units, caravan.NewUnit(sched, profile, i))
	}
	s.fleets[routeID] = units

	slog.Info("route caravans spawned",
		"route_id", route.ID, "units", len(units),
		"travel_time", sched.TravelTime.Round(time.Millisecond))
}

// TeardownRoute stops and discards a route's caravans. Must be called
// before the next step when a route is deleted so no transfer fires into
// removed storage.
func (s *Simulation) TeardownRoute(routeID int64) {
	delete(s.fleets, routeID)
}

// RemoveCity deletes a city, its inventory, and every route touching it.
func (s *Simulation) RemoveCity(cityID int64) bool {
	if !s.World.RemoveCity(cityID) {
		return false
	}
	s.Store.DropCity(cityID)

	var orphaned []int64
	for _, r := range s.World.Routes {
		if r.FromCityID == cityID || r.ToCityID == cityID {
			orphaned = append(orphaned, r.ID)
		}
	}
	for _, id := range orphaned {
		s.TeardownRoute(id)
		s.World.RemoveRoute(id)
	}
	return true
}

// Units returns the live units of a route (nil when none).
func (s *Simulation) Units(routeID int64) []*caravan.Unit { return s.fleets[routeID] }

// UnitCount returns the total number of live caravans.
func (s *Simulation) UnitCount() int {
	n := 0
	for _, units := range s.fleets {
		n += len(units)
	}
	return n
}

// Advance moves the whole simulation forward by dt of game time: economy
// ticks fire on their accumulator, every caravan advances and runs its
// transfers at cycle boundaries, and the inventory snapshot flushes on its
// own cadence. Partial accumulator progress survives speed changes because
// dt arrives pre-scaled.
func (s *Simulation) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.GameTime += dt

	s.econAcc += dt
	for s.econAcc >= EconomyTickInterval {
		s.econAcc -= EconomyTickInterval
		s.Econ.Tick()
		s.EconomyTicks++
	}

	// Walk routes in snapshot order, not fleet-map order: transfers draw
	// from the shared seeded selector, so iteration order must be stable
	// for fixed-seed runs to reproduce.
	for _, route := range s.World.Routes {
		for _, u := range s.fleets[route.ID] {
			boundaries := u.Advance(dt)
			for i := 0; i < boundaries; i++ {
				s.transfer(route, u)
			}
		}
	}

	s.persistAcc += dt
	if s.persistAcc >= PersistInterval {
		s.persistAcc -= PersistInterval
		s.flushInventory()
	}
}

// transfer runs one cycle-boundary event for a unit.
func (s *Simulation) transfer(route *world.Route, u *caravan.Unit) {
	from := s.World.CityByID(route.FromCityID)
	to := s.World.CityByID(route.ToCityID)
	if from == nil || to == nil {
		slog.Debug("transfer skipped, route endpoint missing", "route_id", route.ID)
		return
	}
	src := s.Store.Storage(from.ID, from.MaxStorage)
	dst := s.Store.Storage(to.ID, to.MaxStorage)
	s.Coord.Transfer(u, src, dst, s.World.RulesForCity(to.ID))
}

// flushInventory hands a snapshot to the store without blocking the step.
// Failures are logged and forgotten; in-memory state stays authoritative.
func (s *Simulation) flushInventory() {
	if s.Flusher == nil {
		return
	}
	snapshot := s.Store.Snapshot()
	go func() {
		if err := s.Flusher.SaveAllInventory(snapshot); err != nil {
			slog.Error("inventory flush failed", "records", len(snapshot), "error", err)
		}
	}()
}
