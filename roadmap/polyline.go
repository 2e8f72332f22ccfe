package roadmap

import (
	"context"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Polyline is a single road made of straight segments.
type Polyline struct {
	points     []r2.Point
	cumulative []float64
}

// NewPolyline builds a road through points, which must contain at least two distinct points.
// Consecutive duplicates are dropped.
func NewPolyline(points []r2.Point) (*Polyline, error) {
	deduped := make([]r2.Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, errors.Errorf("road point %v is not finite", p)
		}
		if len(deduped) > 0 && deduped[len(deduped)-1] == p {
			continue
		}
		deduped = append(deduped, p)
	}
	if len(deduped) < 2 {
		return nil, errors.New("road needs at least two distinct points")
	}

	cumulative := make([]float64, len(deduped))
	for i := 1; i < len(deduped); i++ {
		cumulative[i] = cumulative[i-1] + deduped[i].Sub(deduped[i-1]).Norm()
	}
	return &Polyline{points: deduped, cumulative: cumulative}, nil
}

// NewPolylineFromVectors is NewPolyline for 3D points; z is ignored.
func NewPolylineFromVectors(points []r3.Vector) (*Polyline, error) {
	return NewPolyline(lo.Map(points, func(p r3.Vector, _ int) r2.Point {
		return r2.Point{X: p.X, Y: p.Y}
	}))
}

// Length returns the length of the road.
func (pl *Polyline) Length() float64 {
	return pl.cumulative[len(pl.cumulative)-1]
}

// Points returns the road's vertices.
func (pl *Polyline) Points() []r2.Point {
	return append([]r2.Point(nil), pl.points...)
}

// Waypoint projects location onto the nearest segment of the road.
func (pl *Polyline) Waypoint(ctx context.Context, location r3.Vector) (Waypoint, error) {
	if err := ctx.Err(); err != nil {
		return Waypoint{}, err
	}
	loc := r2.Point{X: location.X, Y: location.Y}

	bestDist := math.Inf(1)
	bestS := 0.
	for i := 0; i+1 < len(pl.points); i++ {
		a, b := pl.points[i], pl.points[i+1]
		seg := b.Sub(a)
		frac := loc.Sub(a).Dot(seg) / seg.Dot(seg)
		frac = math.Max(0, math.Min(1, frac))
		proj := a.Add(seg.Mul(frac))
		if d := loc.Sub(proj).Norm(); d < bestDist {
			bestDist = d
			bestS = pl.cumulative[i] + frac*seg.Norm()
		}
	}
	return pl.at(bestS), nil
}

// Next returns the point distance further along the road, or nothing past the road's end.
func (pl *Polyline) Next(ctx context.Context, wp Waypoint, distance float64) ([]Waypoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if distance <= 0 || math.IsNaN(distance) {
		return nil, errors.Errorf("lookahead distance must be positive, got %v", distance)
	}
	s := wp.Distance + distance
	if s > pl.Length() {
		return nil, nil
	}
	return []Waypoint{pl.at(s)}, nil
}

// at returns the waypoint at arc length s, which must lie within the road.
func (pl *Polyline) at(s float64) Waypoint {
	// Index of the first vertex at or beyond s; the segment ends there.
	end := sort.SearchFloat64s(pl.cumulative, s)
	if end == 0 {
		end = 1
	}
	if end >= len(pl.points) {
		end = len(pl.points) - 1
	}
	a, b := pl.points[end-1], pl.points[end]
	seg := b.Sub(a)
	frac := (s - pl.cumulative[end-1]) / seg.Norm()
	p := a.Add(seg.Mul(frac))
	return Waypoint{
		Location: r3.Vector{X: p.X, Y: p.Y},
		Yaw:      math.Atan2(seg.Y, seg.X),
		Distance: s,
	}
}
