package caravan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezenin/tradeway/internal/world"
)

func TestBuildScheduleArithmetic(t *testing.T) {
	route := &world.Route{ID: 1, SpeedCoeff: 2.0, UnitCount: 4}
	profile := &world.TransportProfile{ID: 1, BaseSpeed: 20}

	sched, ok := BuildSchedule(route, profile, 1000)
	require.True(t, ok)

	assert.Equal(t, 40.0, sched.FinalSpeed)
	assert.Equal(t, 25*time.Second, sched.TravelTime)
	assert.Equal(t, 25, route.CalculatedDuration, "cached duration refreshed in seconds")

	// Unit 2 of 4: 2 * (1/4) * 25000ms.
	assert.Equal(t, 12500*time.Millisecond, sched.PhaseDelay(2))
	assert.Equal(t, time.Duration(0), sched.PhaseDelay(0))
}

func TestBuildScheduleDegenerateRoutes(t *testing.T) {
	route := &world.Route{ID: 1, SpeedCoeff: 1.0, UnitCount: 2}
	profile := &world.TransportProfile{ID: 1, BaseSpeed: 20}

	_, ok := BuildSchedule(route, profile, 0)
	assert.False(t, ok, "zero-length path has no schedule")

	_, ok = BuildSchedule(route, nil, 1000)
	assert.False(t, ok, "unknown transport has no schedule")

	slow := &world.TransportProfile{ID: 2, BaseSpeed: 0}
	_, ok = BuildSchedule(route, slow, 1000)
	assert.False(t, ok, "zero speed has no schedule")
}

func TestUnitAdvanceBoundaries(t *testing.T) {
	route := &world.Route{ID: 1, SpeedCoeff: 1.0, UnitCount: 2}
	profile := &world.TransportProfile{ID: 1, BaseSpeed: 100, CapacityUnits: 10}
	sched, ok := BuildSchedule(route, profile, 1000) // 10s per loop
	require.True(t, ok)

	// Unit 0 departs immediately: the first Advance crosses one boundary.
	u0 := NewUnit(sched, profile, 0)
	assert.Equal(t, 1, u0.Advance(time.Second))
	assert.InDelta(t, 0.1, u0.Progress(), 1e-9)

	// Nine more seconds wrap the loop exactly once.
	assert.Equal(t, 1, u0.Advance(9*time.Second))
	assert.InDelta(t, 0.0, u0.Progress(), 1e-9)

	// Unit 1 waits out its 5s phase delay first.
	u1 := NewUnit(sched, profile, 1)
	assert.Equal(t, 0, u1.Advance(3*time.Second))
	assert.False(t, u1.Departed())
	assert.Equal(t, 1, u1.Advance(3*time.Second), "delay elapses mid-step, departure fires")
	assert.True(t, u1.Departed())
	assert.InDelta(t, 0.1, u1.Progress(), 1e-9)
}

func TestUnitAdvanceMultipleWraps(t *testing.T) {
	route := &world.Route{ID: 1, SpeedCoeff: 1.0, UnitCount: 1}
	profile := &world.TransportProfile{ID: 1, BaseSpeed: 100}
	sched, ok := BuildSchedule(route, profile, 100) // 1s per loop
	require.True(t, ok)

	u := NewUnit(sched, profile, 0)
	// Departure plus three full loops in one oversized step.
	assert.Equal(t, 4, u.Advance(3500*time.Millisecond))
	assert.InDelta(t, 0.5, u.Progress(), 1e-9)
}
