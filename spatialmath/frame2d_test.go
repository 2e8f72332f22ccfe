package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestToAgentFrameHandExample(t *testing.T) {
	local := ToAgentFrame(r2.Point{X: 0, Y: 5}, r2.Point{}, 0)
	test.That(t, local.X, test.ShouldAlmostEqual, 5)
	test.That(t, local.Y, test.ShouldAlmostEqual, 0)

	// Zero heading is a translation followed by the fixed quarter turn.
	local = ToAgentFrame(r2.Point{X: 3, Y: 7}, r2.Point{X: 1, Y: 2}, 0)
	test.That(t, local.X, test.ShouldAlmostEqual, 5)
	test.That(t, local.Y, test.ShouldAlmostEqual, -2)
}

func TestAgentFrameRoundTrip(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: -3.5, Y: 12.25}, {X: 1e3, Y: -7e2}}
	positions := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: -4}, {X: -250.5, Y: 99}}
	headings := []float64{0, math.Pi / 2, -math.Pi, 2.3, -0.7, 7 * math.Pi}

	for _, p := range points {
		for _, pos := range positions {
			for _, yaw := range headings {
				back := ToWorldFrame(ToAgentFrame(p, pos, yaw), pos, yaw)
				test.That(t, back.X, test.ShouldAlmostEqual, p.X, 1e-9)
				test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, 1e-9)
			}
		}
	}
}

func TestNonFiniteHeading(t *testing.T) {
	p := r2.Point{X: 4, Y: -1}
	pos := r2.Point{X: 1, Y: 1}
	expected := ToAgentFrame(p, pos, 0)
	for _, yaw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		test.That(t, SanitizeHeading(yaw), test.ShouldEqual, 0)
		local := ToAgentFrame(p, pos, yaw)
		test.That(t, local.X, test.ShouldAlmostEqual, expected.X)
		test.That(t, local.Y, test.ShouldAlmostEqual, expected.Y)
	}
}

func TestRotation2D(t *testing.T) {
	rot := NewAgentRotation(0)
	m := rot.Matrix()
	test.That(t, m[0][0], test.ShouldAlmostEqual, 0)
	test.That(t, m[0][1], test.ShouldAlmostEqual, -1)
	test.That(t, m[1][0], test.ShouldAlmostEqual, 1)
	test.That(t, m[1][1], test.ShouldAlmostEqual, 0)

	p := r2.Point{X: 2, Y: 3}
	back := rot.ApplyTranspose(rot.Apply(p))
	test.That(t, back.X, test.ShouldAlmostEqual, 2)
	test.That(t, back.Y, test.ShouldAlmostEqual, 3)
}
