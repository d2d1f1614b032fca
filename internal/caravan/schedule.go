// Package caravan implements route scheduling, the traveling units, and the
// cargo decision/transfer logic that moves goods between city storages.
package caravan

import (
	"math"
	"time"

	"github.com/mezenin/tradeway/internal/world"
)

// Schedule is the derived timing of one route: how long a full traversal
// takes and how the route's units are staggered around the loop.
type Schedule struct {
	RouteID    int64
	PathLength float64
	FinalSpeed float64 // distance units per second
	TravelTime time.Duration
	UnitCount  int
}

// BuildSchedule computes a route's timing from its transport profile and
// polyline length. Returns ok=false for degenerate routes (no geometry,
// zero length, non-positive speed): such routes spawn no caravans.
// Side effect: refreshes the route's advisory CalculatedDuration.
func BuildSchedule(route *world.Route, profile *world.TransportProfile, pathLength float64) (Schedule, bool) {
	if profile == nil || pathLength <= 0 {
		return Schedule{}, false
	}
	finalSpeed := profile.BaseSpeed * route.SpeedCoeff
	if finalSpeed <= 0 {
		return Schedule{}, false
	}

	travelTime := time.Duration(pathLength / finalSpeed * float64(time.Second))
	route.CalculatedDuration = int(math.Round(travelTime.Seconds()))

	return Schedule{
		RouteID:    route.ID,
		PathLength: pathLength,
		FinalSpeed: finalSpeed,
		TravelTime: travelTime,
		UnitCount:  route.UnitCount,
	}, true
}

// PhaseDelay returns unit i's initial departure offset. Units are spread
// evenly around the loop: delay = i * (1/unitCount) * travelTime.
func (s Schedule) PhaseDelay(i int) time.Duration {
	if s.UnitCount <= 0 {
		return 0
	}
	spacing := 1.0 / float64(s.UnitCount)
	return time.Duration(float64(i) * spacing * float64(s.TravelTime))
}
