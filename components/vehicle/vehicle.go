// Package vehicle defines the capabilities the waypoint controller needs from a simulated vehicle:
// pose and velocity queries, velocity setters, and spawning of sensors that report asynchronously.
package vehicle

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/e2edrive/spatialmath"
)

// An Actor is anything in the world whose velocity can be queried.
type Actor interface {
	// Name is the actor's unique name in its world.
	Name() string

	// Velocity returns the actor's linear velocity in world coordinates.
	Velocity(ctx context.Context) (r3.Vector, error)
}

// A Vehicle is an actor that can be driven and can carry sensors.
type Vehicle interface {
	Actor

	// Pose returns the vehicle's current position and orientation in the world frame.
	Pose(ctx context.Context) (spatialmath.Pose, error)

	// SetLinearVelocity sets the target linear velocity in world coordinates.
	SetLinearVelocity(ctx context.Context, linear r3.Vector) error

	// SetAngularVelocity sets the target angular velocity.
	SetAngularVelocity(ctx context.Context, angular spatialmath.AngularVelocity) error

	// SpawnSensor attaches a sensor to the vehicle. onEvent may be called from any goroutine
	// until the sensor is destroyed.
	SpawnSensor(ctx context.Context, cfg SensorConfig, onEvent func(SensorEvent)) (SensorHandle, error)

	// DestroySensor detaches a sensor. Destroying an unknown or already destroyed sensor is a no-op.
	DestroySensor(ctx context.Context, handle SensorHandle) error
}

// SensorKind is the type of sensor to spawn.
type SensorKind string

// Known sensor kinds.
const (
	SensorKindObstacle SensorKind = "obstacle"
	SensorKindCamera   SensorKind = "camera"
)

// SensorConfig describes a sensor to spawn. Attributes are sensor specific.
type SensorConfig struct {
	Kind       SensorKind
	Attributes map[string]interface{}
}

// SensorHandle identifies a spawned sensor.
type SensorHandle string

// SensorEvent is a reading delivered by a spawned sensor.
type SensorEvent interface {
	Kind() SensorKind
}

// ObstacleEvent reports the nearest obstacle in front of the vehicle.
type ObstacleEvent struct {
	Distance float64
	Other    Actor
}

// Kind returns SensorKindObstacle.
func (e *ObstacleEvent) Kind() SensorKind {
	return SensorKindObstacle
}
