package control

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/e2edrive/components/vehicle"
	"go.viam.com/e2edrive/logging"
	"go.viam.com/e2edrive/roadmap"
	"go.viam.com/e2edrive/spatialmath"
	"go.viam.com/e2edrive/utils"
)

const (
	// External waypoints closer than this are dropped before targeting.
	externalDropDistance = 0.5
	// Waypoints are consumed once the vehicle is within these distances.
	generatedReachDistance = 2.0
	externalReachDistance  = 4.0

	lookaheadDistance  = 3.0
	generatedBufferLen = 50

	// Directions shorter than this produce a zero command.
	directionEpsilon = 1e-6
)

// State is the phase of a WaypointController.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateFollowing
	StateGoalReached
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFollowing:
		return "following"
	case StateGoalReached:
		return "goal_reached"
	default:
		return "unknown"
	}
}

// WaypointController drives a vehicle along externally supplied waypoints or, without them, along
// waypoints generated from the road map. It sets velocities directly and bypasses any vehicle
// dynamics, which makes speed tracking exact but cornering approximate.
type WaypointController struct {
	vehicle vehicle.Vehicle
	roadMap roadmap.Map
	clock   clock.Clock
	logger  logging.Logger
	cfg     Config

	obstacle atomic.Pointer[ObstacleReading]
	// camera is set once during construction.
	camera *debugCamera

	mu             sync.Mutex
	state          State
	targetSpeed    float64
	external       []spatialmath.Pose
	generated      []roadmap.Waypoint
	reachedGoal    bool
	lastUpdate     time.Time
	obstacleSensor vehicle.SensorHandle
	cameraSensor   vehicle.SensorHandle
}

// NewWaypointController creates a controller for v and spawns the sensors cfg asks for. A sensor that
// cannot be spawned is a setup error.
func NewWaypointController(
	ctx context.Context,
	v vehicle.Vehicle,
	roadMap roadmap.Map,
	clk clock.Clock,
	cfg *Config,
	logger logging.Logger,
) (*WaypointController, error) {
	if v == nil {
		return nil, errors.New("waypoint controller needs a vehicle")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate("controller"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("waypoint_controller")
	}

	wc := &WaypointController{
		vehicle:     v,
		roadMap:     roadMap,
		clock:       clk,
		logger:      logger,
		cfg:         *cfg,
		targetSpeed: cfg.TargetSpeed,
	}
	wc.obstacle.Store(NoObstacle())

	// The camera must exist before any sensor can deliver events to onSensorEvent.
	if cfg.AttachCamera {
		cam, err := newDebugCamera(cfg.CameraSnapshotDir, logger)
		if err != nil {
			return nil, err
		}
		wc.camera = cam
	}

	if cfg.ConsiderObstacles {
		handle, err := v.SpawnSensor(ctx, vehicle.SensorConfig{
			Kind:       vehicle.SensorKindObstacle,
			Attributes: cfg.obstacleSensorAttributes(),
		}, wc.onSensorEvent)
		if err != nil {
			return nil, errors.Wrap(err, "failed to spawn obstacle sensor")
		}
		wc.obstacleSensor = handle
	}

	if cfg.AttachCamera {
		handle, err := v.SpawnSensor(ctx, vehicle.SensorConfig{Kind: vehicle.SensorKindCamera}, wc.onSensorEvent)
		if err != nil {
			return nil, multierr.Combine(errors.Wrap(err, "failed to spawn debug camera"), wc.Reset(ctx))
		}
		wc.cameraSensor = handle
	}

	return wc, nil
}

// onSensorEvent is the callback of every sensor the controller owns. It never blocks.
func (wc *WaypointController) onSensorEvent(ev vehicle.SensorEvent) {
	switch e := ev.(type) {
	case *vehicle.ObstacleEvent:
		wc.obstacle.Store(&ObstacleReading{Distance: e.Distance, Other: e.Other})
	case *vehicle.CameraImage:
		if wc.camera != nil {
			wc.camera.update(e)
		}
	}
}

// ObstacleReading returns the latest obstacle reading.
func (wc *WaypointController) ObstacleReading() *ObstacleReading {
	return wc.obstacle.Load()
}

// SetTargetSpeed sets the nominal speed used on following ticks.
func (wc *WaypointController) SetTargetSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return errors.Errorf("target speed must be finite and non-negative, got %v", speed)
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.targetSpeed = speed
	return nil
}

// UpdateWaypoints replaces the external waypoint list. An empty list switches to waypoints
// generated from the road map. Either way a previously reached goal is cleared.
func (wc *WaypointController) UpdateWaypoints(waypoints []spatialmath.Pose) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.external = append([]spatialmath.Pose(nil), waypoints...)
	wc.reachedGoal = false
	if wc.state == StateGoalReached {
		wc.state = StateIdle
	}
}

// ReachedGoal reports whether the last external waypoint was reached.
func (wc *WaypointController) ReachedGoal() bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.reachedGoal
}

// State returns the controller's phase.
func (wc *WaypointController) State() State {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.state
}

// RemainingWaypoints returns how many external and generated waypoints are still queued.
func (wc *WaypointController) RemainingWaypoints() (external, generated int) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.external), len(wc.generated)
}

// RunStep executes one control tick. It must be called once per simulation frame.
func (wc *WaypointController) RunStep(ctx context.Context) error {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if wc.camera != nil {
		wc.camera.flush(ctx)
	}

	if wc.reachedGoal {
		return wc.stop(ctx)
	}

	pose, err := wc.vehicle.Pose(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get vehicle pose")
	}

	if len(wc.external) == 0 {
		return wc.followGenerated(ctx, pose)
	}
	return wc.followExternal(ctx, pose)
}

func (wc *WaypointController) followGenerated(ctx context.Context, pose spatialmath.Pose) error {
	if err := wc.extendGenerated(ctx, pose.Point()); err != nil {
		return err
	}
	if len(wc.generated) == 0 {
		wc.logger.CDebugw(ctx, "road ends at the vehicle, stopping", "vehicle", wc.vehicle.Name())
		return wc.stop(ctx)
	}

	target := wc.generated[0]
	heading := func(r3.Vector) float64 { return utils.RadToDeg(spatialmath.SanitizeHeading(target.Yaw)) }
	norm, err := wc.setNewVelocity(ctx, pose, target.Location, heading)
	if err != nil {
		return err
	}
	if norm < generatedReachDistance {
		wc.generated = wc.generated[1:]
	}
	return nil
}

// extendGenerated fills the generated buffer from the road map. A road that ends early leaves a
// shorter buffer.
func (wc *WaypointController) extendGenerated(ctx context.Context, location r3.Vector) error {
	if len(wc.generated) >= generatedBufferLen {
		return nil
	}
	if wc.roadMap == nil {
		return errors.New("no external waypoints and no road map to generate them from")
	}

	var from roadmap.Waypoint
	if len(wc.generated) == 0 {
		wp, err := wc.roadMap.Waypoint(ctx, location)
		if err != nil {
			return errors.Wrap(err, "failed to find road waypoint")
		}
		from = wp
	} else {
		from = wc.generated[len(wc.generated)-1]
	}

	for len(wc.generated) < generatedBufferLen {
		next, err := wc.roadMap.Next(ctx, from, lookaheadDistance)
		if err != nil {
			return errors.Wrap(err, "failed to query next road waypoint")
		}
		if len(next) == 0 {
			break
		}
		wc.generated = append(wc.generated, next[0])
		from = next[0]
	}
	return nil
}

func (wc *WaypointController) followExternal(ctx context.Context, pose spatialmath.Pose) error {
	location := pose.Point()
	wc.external = lo.DropWhile(wc.external, func(wp spatialmath.Pose) bool {
		return wp.Point().Distance(location) < externalDropDistance
	})
	if len(wc.external) == 0 {
		// Every remaining waypoint was already under the vehicle.
		wc.markGoalReached(ctx)
		return wc.stop(ctx)
	}

	heading := func(direction r3.Vector) float64 {
		return utils.RadToDeg(math.Atan2(direction.Y, direction.X))
	}
	norm, err := wc.setNewVelocity(ctx, pose, wc.external[0].Point(), heading)
	if err != nil {
		return err
	}
	if norm < externalReachDistance {
		wc.external = wc.external[1:]
		if len(wc.external) == 0 {
			wc.markGoalReached(ctx)
		}
	}
	return nil
}

func (wc *WaypointController) markGoalReached(ctx context.Context) {
	wc.reachedGoal = true
	wc.state = StateGoalReached
	wc.logger.CInfof(ctx, "%s reached its last waypoint", wc.vehicle.Name())
}

func (wc *WaypointController) stop(ctx context.Context) error {
	if err := wc.vehicle.SetLinearVelocity(ctx, r3.Vector{}); err != nil {
		return errors.Wrap(err, "failed to stop vehicle")
	}
	return wc.vehicle.SetAngularVelocity(ctx, spatialmath.AngularVelocity{})
}

// setNewVelocity commands a velocity towards target and a yaw rate that turns the vehicle onto the
// heading given by headingDeg by the time it gets there. It returns the planar distance to target.
func (wc *WaypointController) setNewVelocity(
	ctx context.Context,
	pose spatialmath.Pose,
	target r3.Vector,
	headingDeg func(direction r3.Vector) float64,
) (float64, error) {
	now := wc.clock.Now()
	if wc.lastUpdate.IsZero() {
		wc.lastUpdate = now
	}
	defer func() { wc.lastUpdate = now }()

	speed, err := wc.desiredSpeed(ctx, now.Sub(wc.lastUpdate))
	if err != nil {
		return 0, err
	}

	direction := target.Sub(pose.Point())
	direction.Z = 0
	norm := direction.Norm()
	wc.state = StateFollowing
	if norm < directionEpsilon {
		return norm, wc.stop(ctx)
	}

	linear := direction.Mul(speed / norm)
	if err := wc.vehicle.SetLinearVelocity(ctx, linear); err != nil {
		return 0, errors.Wrap(err, "failed to set linear velocity")
	}

	currentYaw := utils.RadToDeg(spatialmath.SanitizeHeading(pose.Orientation().EulerAngles().Yaw))
	delta := utils.WrapDegrees(headingDeg(direction) - currentYaw)
	angular := spatialmath.YawRateToReach(delta, norm, speed)
	if err := wc.vehicle.SetAngularVelocity(ctx, angular); err != nil {
		return 0, errors.Wrap(err, "failed to set angular velocity")
	}

	wc.logger.CDebugw(ctx, "velocity command",
		"vehicle", wc.vehicle.Name(), "speed", speed, "distance", norm, "heading_error", delta)
	return norm, nil
}

// desiredSpeed is the target speed, shaped by the latest obstacle reading when enabled.
func (wc *WaypointController) desiredSpeed(ctx context.Context, elapsed time.Duration) (float64, error) {
	if !wc.cfg.ConsiderObstacles {
		return wc.targetSpeed, nil
	}
	reading := wc.obstacle.Load()
	if !(reading.Distance < wc.cfg.ProximityThreshold) {
		return wc.targetSpeed, nil
	}

	egoVel, err := wc.vehicle.Velocity(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get vehicle velocity")
	}
	otherSpeed := 0.
	if reading.Other != nil {
		otherVel, err := reading.Other.Velocity(ctx)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to get velocity of %s", reading.Other.Name())
		}
		otherSpeed = math.Hypot(otherVel.X, otherVel.Y)
	}

	speed := ShapeSpeed(wc.targetSpeed, reading.Distance, wc.cfg.ProximityThreshold,
		math.Hypot(egoVel.X, egoVel.Y), otherSpeed, elapsed.Seconds())
	if speed != wc.targetSpeed {
		wc.logger.CDebugw(ctx, "adapting speed to obstacle", "distance", reading.Distance, "speed", speed)
	}
	return speed, nil
}

// Reset destroys the sensors the controller spawned and forgets them. Calling Reset again is a no-op.
func (wc *WaypointController) Reset(ctx context.Context) error {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	var err error
	if wc.cameraSensor != "" {
		err = multierr.Combine(err, wc.vehicle.DestroySensor(ctx, wc.cameraSensor))
		wc.cameraSensor = ""
	}
	if wc.obstacleSensor != "" {
		err = multierr.Combine(err, wc.vehicle.DestroySensor(ctx, wc.obstacleSensor))
		wc.obstacleSensor = ""
	}
	wc.obstacle.Store(NoObstacle())
	return err
}

// SensorsAttached reports whether the controller still owns any sensor.
func (wc *WaypointController) SensorsAttached() bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.cameraSensor != "" || wc.obstacleSensor != ""
}

// LatestCameraFrame returns the newest debug camera frame, or nil when there is none.
func (wc *WaypointController) LatestCameraFrame() *vehicle.CameraImage {
	if wc.camera == nil {
		return nil
	}
	return wc.camera.latest()
}
