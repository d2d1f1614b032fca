package world

import "math"

// Point is a map coordinate.
type Point struct {
	X float64
	Y float64
}

// Path is an ordered polyline on the map. The renderer draws a spline
// through these points; for scheduling the straight-segment length is the
// contract.
type Path []Point

// Length returns the total polyline length. Zero for fewer than two points.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += distance(p[i-1], p[i])
	}
	return total
}

// PositionAt samples the point at normalized distance t along the path.
// t is clamped to [0, 1].
func (p Path) PositionAt(t float64) Point {
	if len(p) == 0 {
		return Point{}
	}
	if len(p) == 1 || t <= 0 {
		return p[0]
	}
	if t >= 1 {
		return p[len(p)-1]
	}

	target := t * p.Length()
	walked := 0.0
	for i := 1; i < len(p); i++ {
		seg := distance(p[i-1], p[i])
		if walked+seg >= target && seg > 0 {
			f := (target - walked) / seg
			return Point{
				X: p[i-1].X + (p[i].X-p[i-1].X)*f,
				Y: p[i-1].Y + (p[i].Y-p[i-1].Y)*f,
			}
		}
		walked += seg
	}
	return p[len(p)-1]
}

// TangentAt returns the unit direction of travel at normalized distance t.
func (p Path) TangentAt(t float64) Point {
	if len(p) < 2 {
		return Point{X: 1}
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	target := t * p.Length()
	walked := 0.0
	for i := 1; i < len(p); i++ {
		seg := distance(p[i-1], p[i])
		if (walked+seg >= target || i == len(p)-1) && seg > 0 {
			return Point{
				X: (p[i].X - p[i-1].X) / seg,
				Y: (p[i].Y - p[i-1].Y) / seg,
			}
		}
		walked += seg
	}
	return Point{X: 1}
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
