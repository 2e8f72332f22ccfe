package control

import (
	"math"

	"go.viam.com/e2edrive/components/vehicle"
	"go.viam.com/e2edrive/utils"
)

// ObstacleReading is the latest report of the obstacle sensor. Readings are immutable and are
// replaced as a whole, so distance and actor always belong to the same event.
type ObstacleReading struct {
	Distance float64
	Other    vehicle.Actor
}

// NoObstacle is the reading before the sensor reported anything.
func NoObstacle() *ObstacleReading {
	return &ObstacleReading{Distance: math.Inf(1)}
}

// ShapeSpeed adapts the nominal speed to an obstacle distance meters ahead. Within threshold the
// vehicle decelerates at the constant rate that would close the speed gap over the remaining
// distance, evaluated over elapsed seconds. This is a heuristic, not a braking model.
func ShapeSpeed(nominal, distance, threshold, egoSpeed, otherSpeed, elapsed float64) float64 {
	if !(distance < threshold) {
		return nominal
	}
	if distance <= 0 {
		return 0
	}
	if otherSpeed >= egoSpeed {
		return nominal
	}
	acceleration := -0.5 * utils.Square(egoSpeed-otherSpeed) / distance
	return math.Max(acceleration*elapsed+egoSpeed, 0)
}
