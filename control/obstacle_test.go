package control

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestShapeSpeed(t *testing.T) {
	t.Run("closing in on a slower obstacle", func(t *testing.T) {
		speed := ShapeSpeed(10, 10, 20, 10, 0, 1)
		test.That(t, speed, test.ShouldBeLessThan, 10)
		test.That(t, speed, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, speed, test.ShouldAlmostEqual, 5)
	})
	t.Run("obstacle at the vehicle", func(t *testing.T) {
		test.That(t, ShapeSpeed(10, 0, 20, 10, 0, 1), test.ShouldEqual, 0)
		test.That(t, ShapeSpeed(10, -2, 20, 10, 15, 1), test.ShouldEqual, 0)
	})
	t.Run("faster obstacle", func(t *testing.T) {
		test.That(t, ShapeSpeed(7, 10, 20, 10, 12, 1), test.ShouldEqual, 7)
		test.That(t, ShapeSpeed(7, 10, 20, 10, 10, 1), test.ShouldEqual, 7)
	})
	t.Run("outside threshold", func(t *testing.T) {
		test.That(t, ShapeSpeed(7, 20, 20, 10, 0, 1), test.ShouldEqual, 7)
		test.That(t, ShapeSpeed(7, math.Inf(1), math.Inf(1), 10, 0, 1), test.ShouldEqual, 7)
		test.That(t, ShapeSpeed(7, math.NaN(), 20, 10, 0, 1), test.ShouldEqual, 7)
	})
	t.Run("never negative", func(t *testing.T) {
		test.That(t, ShapeSpeed(10, 0.5, 20, 10, 0, 5), test.ShouldEqual, 0)
	})
	t.Run("no elapsed time keeps current speed", func(t *testing.T) {
		test.That(t, ShapeSpeed(3, 5, 20, 10, 0, 0), test.ShouldEqual, 10)
	})
}

func TestNoObstacle(t *testing.T) {
	reading := NoObstacle()
	test.That(t, math.IsInf(reading.Distance, 1), test.ShouldBeTrue)
	test.That(t, reading.Other, test.ShouldBeNil)
}
