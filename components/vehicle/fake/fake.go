// Package fake implements a kinematic vehicle and a small world to drive it in.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"go.viam.com/e2edrive/components/vehicle"
	"go.viam.com/e2edrive/spatialmath"
	"go.viam.com/e2edrive/utils"
)

// Vehicle is a fake vehicle that moves at exactly the velocity it was last commanded.
type Vehicle struct {
	name   string
	static bool

	mu       sync.Mutex
	position r3.Vector
	yaw      float64
	linear   r3.Vector
	angular  spatialmath.AngularVelocity
	sensors  map[vehicle.SensorHandle]*sensor

	// SpawnSensorErr, when set, is returned by SpawnSensor.
	SpawnSensorErr error
	// DestroyCount counts DestroySensor calls that removed a live sensor.
	DestroyCount int
}

func newVehicle(name string, start spatialmath.Pose, static bool) *Vehicle {
	return &Vehicle{
		name:     name,
		static:   static,
		position: start.Point(),
		yaw:      spatialmath.Heading(start),
		sensors:  map[vehicle.SensorHandle]*sensor{},
	}
}

// Name returns the vehicle's name.
func (v *Vehicle) Name() string {
	return v.name
}

// Pose returns the current position and heading.
func (v *Vehicle) Pose(ctx context.Context) (spatialmath.Pose, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return spatialmath.NewPose(v.position, spatialmath.NewYaw(v.yaw)), nil
}

// Velocity returns the last commanded linear velocity.
func (v *Vehicle) Velocity(ctx context.Context) (r3.Vector, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.linear, nil
}

// SetLinearVelocity stores the commanded linear velocity.
func (v *Vehicle) SetLinearVelocity(ctx context.Context, linear r3.Vector) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.linear = linear
	return nil
}

// SetAngularVelocity stores the commanded angular velocity.
func (v *Vehicle) SetAngularVelocity(ctx context.Context, angular spatialmath.AngularVelocity) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.angular = angular
	return nil
}

// AngularVelocity returns the last commanded angular velocity.
func (v *Vehicle) AngularVelocity() spatialmath.AngularVelocity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.angular
}

// SpawnSensor attaches an obstacle sensor or a camera.
func (v *Vehicle) SpawnSensor(
	ctx context.Context,
	cfg vehicle.SensorConfig,
	onEvent func(vehicle.SensorEvent),
) (vehicle.SensorHandle, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.SpawnSensorErr != nil {
		return "", v.SpawnSensorErr
	}
	s, err := newSensor(cfg, onEvent)
	if err != nil {
		return "", err
	}
	handle := vehicle.SensorHandle(uuid.NewString())
	v.sensors[handle] = s
	return handle, nil
}

// DestroySensor detaches a sensor. Unknown handles are ignored.
func (v *Vehicle) DestroySensor(ctx context.Context, handle vehicle.SensorHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.sensors[handle]; !ok {
		return nil
	}
	delete(v.sensors, handle)
	v.DestroyCount++
	return nil
}

// ActiveSensors returns the number of attached sensors.
func (v *Vehicle) ActiveSensors() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.sensors)
}

// SetPose teleports the vehicle.
func (v *Vehicle) SetPose(p spatialmath.Pose) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = p.Point()
	v.yaw = spatialmath.Heading(p)
}

// step integrates the commanded velocities over dt seconds.
func (v *Vehicle) step(dt float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.static {
		return
	}
	v.position = v.position.Add(v.linear.Mul(dt))
	v.yaw = wrapRadians(v.yaw + utils.DegToRad(v.angular.Z)*dt)
}

func wrapRadians(yaw float64) float64 {
	return utils.DegToRad(utils.WrapDegrees(utils.RadToDeg(yaw)))
}

type snapshot struct {
	actor    *Vehicle
	position r3.Vector
	yaw      float64
	sensors  []*sensor
}

func (v *Vehicle) snapshot() snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := snapshot{actor: v, position: v.position, yaw: v.yaw}
	for _, sen := range v.sensors {
		s.sensors = append(s.sensors, sen)
	}
	return s
}

// nearestAhead returns the closest actor in the obstacle sensor's forward channel.
func nearestAhead(self snapshot, others []snapshot, attrs ObstacleAttributes) (*Vehicle, float64) {
	var nearest *Vehicle
	best := math.Inf(1)
	heading := spatialmath.NewYaw(self.yaw)
	for _, other := range others {
		if other.actor == self.actor || (attrs.OnlyDynamics && other.actor.static) {
			continue
		}
		local := spatialmath.VectorWorldToRef(other.position.Sub(self.position), heading)
		if local.X <= 0 || local.X > attrs.Distance || math.Abs(local.Y) > attrs.HitRadius {
			continue
		}
		if local.X < best {
			best = local.X
			nearest = other.actor
		}
	}
	return nearest, best
}
