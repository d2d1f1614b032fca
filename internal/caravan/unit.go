package caravan

import (
	"time"

	"github.com/google/uuid"

	"github.com/mezenin/tradeway/internal/world"
)

// Unit is one vehicle traversing a route in a loop. Runtime-only: units are
// rebuilt from the route and transport profile on every (re)load and
// whenever the route's geometry or unit count changes.
type Unit struct {
	ID        uuid.UUID
	RouteID   int64
	Transport *world.TransportProfile

	// At most one cargo slot.
	CargoItem   *world.Item
	CargoAmount float64

	travelTime time.Duration
	delay      time.Duration // remaining phase offset before first departure
	departed   bool
	progress   float64 // position along the loop in [0, 1)
}

// NewUnit creates unit i of a route's schedule, parked at the origin until
// its phase delay elapses.
func NewUnit(s Schedule, transport *world.TransportProfile, i int) *Unit {
	return &Unit{
		ID:         uuid.New(),
		RouteID:    s.RouteID,
		Transport:  transport,
		travelTime: s.TravelTime,
		delay:      s.PhaseDelay(i),
	}
}

// Loaded reports whether the unit currently carries cargo.
func (u *Unit) Loaded() bool {
	return u.CargoItem != nil && u.CargoAmount > 0
}

// Capacity returns how many units of goods this vehicle can carry.
func (u *Unit) Capacity() float64 {
	if u.Transport == nil {
		return 0
	}
	return float64(u.Transport.CapacityUnits)
}

// Progress returns the unit's normalized position along the loop, for
// position sampling by observers. Still 0 while the phase delay runs.
func (u *Unit) Progress() float64 { return u.progress }

// Departed reports whether the unit's phase delay has elapsed.
func (u *Unit) Departed() bool { return u.departed }

// Load sets the cargo slot.
func (u *Unit) Load(item *world.Item, amount float64) {
	u.CargoItem = item
	u.CargoAmount = amount
}

// Unload clears the cargo slot and returns what was carried.
func (u *Unit) Unload() (*world.Item, float64) {
	item, amount := u.CargoItem, u.CargoAmount
	u.CargoItem = nil
	u.CargoAmount = 0
	return item, amount
}

// Advance moves the unit forward by dt of game time and returns how many
// cycle boundaries it crossed: the first departure counts once, and every
// wrap past 1.0 counts once. Each boundary is a transfer event at the
// route's endpoints. Partial progress is preserved across speed changes
// because callers pre-scale dt.
func (u *Unit) Advance(dt time.Duration) int {
	if dt <= 0 || u.travelTime <= 0 {
		return 0
	}

	boundaries := 0
	if !u.departed {
		if dt < u.delay {
			u.delay -= dt
			return 0
		}
		dt -= u.delay
		u.delay = 0
		u.departed = true
		boundaries++ // first departure
	}

	u.progress += float64(dt) / float64(u.travelTime)
	for u.progress >= 1 {
		u.progress -= 1
		boundaries++
	}
	return boundaries
}
