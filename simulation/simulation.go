// Package simulation runs a WaypointController against a fake world described by a scenario.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/e2edrive/components/vehicle/fake"
	"go.viam.com/e2edrive/config"
	"go.viam.com/e2edrive/control"
	"go.viam.com/e2edrive/logging"
	"go.viam.com/e2edrive/roadmap"
)

// Options change how a scenario is run.
type Options struct {
	// Realtime ticks the controller from a control.Loop on Clock instead of stepping as fast as
	// possible on a mock clock.
	Realtime bool
	// Clock drives realtime runs. Defaults to the wall clock.
	Clock clock.Clock
}

// episode is one run of a scenario. Its RunStep is the unit of work of both stepping modes.
type episode struct {
	scenario *config.Scenario
	world    *fake.World
	ego      *fake.Vehicle
	actors   []*fake.Vehicle
	wc       *control.WaypointController
	dt       time.Duration
	advance  func(time.Duration)
	logger   logging.Logger

	trace    *Trace
	steps    int
	finished chan struct{}
	once     sync.Once
}

// Run drives the scenario until the goal is reached, the road ends or the scenario's duration is
// used up, and returns the recorded trace.
func Run(ctx context.Context, scenario *config.Scenario, logger logging.Logger, opts Options) (trace *Trace, err error) {
	if logger == nil {
		logger = logging.NewBlankLogger("simulation")
	}
	if err := scenario.Validate(""); err != nil {
		return nil, err
	}
	cfg, err := scenario.ControllerConfig()
	if err != nil {
		return nil, err
	}

	world := fake.NewWorld()
	ego := world.AddVehicle(scenario.Ego.Name, scenario.Ego.Pose())
	var actors []*fake.Vehicle
	for _, a := range scenario.Actors {
		if a.Static {
			actors = append(actors, world.AddStaticObstacle(a.Name, a.Pose()))
			continue
		}
		v := world.AddVehicle(a.Name, a.Pose())
		if err := v.SetLinearVelocity(ctx, a.Velocity()); err != nil {
			return nil, err
		}
		actors = append(actors, v)
	}

	var roadMap roadmap.Map
	if len(scenario.Road) > 0 {
		road, err := roadmap.NewPolyline(scenario.Road)
		if err != nil {
			return nil, errors.Wrap(err, "invalid road")
		}
		roadMap = road
	}

	loopCfg := scenario.LoopConfig()
	ep := &episode{
		scenario: scenario,
		world:    world,
		ego:      ego,
		actors:   actors,
		dt:       time.Duration(float64(time.Second) / loopCfg.Frequency),
		logger:   logger,
		trace:    newTrace(scenario, actors),
		finished: make(chan struct{}),
	}

	clk := opts.Clock
	if !opts.Realtime {
		mock := clock.NewMock()
		clk = mock
		ep.advance = mock.Add
	} else if clk == nil {
		clk = clock.New()
	}

	wc, err := control.NewWaypointController(ctx, ego, roadMap, clk, cfg, logger.Sublogger("controller"))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, wc.Reset(ctx))
	}()
	wc.UpdateWaypoints(scenario.WaypointPoses())
	ep.wc = wc

	logger.CInfof(ctx, "running scenario %q at %vHz for at most %v", scenario.Name, loopCfg.Frequency, scenario.MaxDuration())
	if opts.Realtime {
		err = ep.runRealtime(ctx, loopCfg, clk)
	} else {
		err = ep.runStepped(ctx)
	}
	if err != nil {
		return nil, err
	}
	logger.CInfof(ctx, "scenario %q finished after %d steps: %s", scenario.Name, ep.steps, ep.trace.Outcome)
	return ep.trace, nil
}

func (ep *episode) runStepped(ctx context.Context) error {
	for !ep.done() {
		if err := ctx.Err(); err != nil {
			ep.trace.Outcome = OutcomeCanceled
			return nil
		}
		if err := ep.RunStep(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (ep *episode) runRealtime(ctx context.Context, cfg control.LoopConfig, clk clock.Clock) error {
	loop, err := control.NewLoop(ep.logger.Sublogger("loop"), cfg, clk, ep)
	if err != nil {
		return err
	}
	if err := loop.Start(ctx); err != nil {
		return err
	}
	defer loop.Stop()

	select {
	case <-ep.finished:
		return nil
	case <-loop.Done():
		if err := loop.Err(); err != nil {
			return err
		}
	case <-ctx.Done():
		loop.Stop()
	}
	if !ep.done() {
		ep.trace.Outcome = OutcomeCanceled
	}
	return nil
}

func (ep *episode) done() bool {
	select {
	case <-ep.finished:
		return true
	default:
		return false
	}
}

func (ep *episode) finish(outcome Outcome) {
	ep.once.Do(func() {
		ep.trace.Outcome = outcome
		close(ep.finished)
	})
}

// RunStep runs the controller, advances the world by one period and records the result.
func (ep *episode) RunStep(ctx context.Context) error {
	if ep.done() {
		return nil
	}
	if err := ep.wc.RunStep(ctx); err != nil {
		return errors.Wrapf(err, "step %d", ep.steps)
	}
	ep.world.Tick(ep.dt)
	if ep.advance != nil {
		ep.advance(ep.dt)
	}
	ep.steps++

	if err := ep.record(ctx); err != nil {
		return err
	}

	external, generated := ep.wc.RemainingWaypoints()
	switch {
	case ep.wc.ReachedGoal():
		ep.finish(OutcomeGoalReached)
	case len(ep.scenario.Waypoints) == 0 && external == 0 && generated == 0:
		ep.finish(OutcomeRoadEnded)
	case ep.steps >= ep.scenario.MaxSteps():
		ep.finish(OutcomeTimedOut)
	}
	return nil
}

func (ep *episode) record(ctx context.Context) error {
	pose, err := ep.ego.Pose(ctx)
	if err != nil {
		return err
	}
	velocity, err := ep.ego.Velocity(ctx)
	if err != nil {
		return err
	}
	sample := Sample{
		Time:             time.Duration(ep.steps) * ep.dt,
		Position:         pose.Point(),
		YawDeg:           pose.Orientation().EulerAngles().YawDegrees(),
		Velocity:         velocity,
		YawRateDeg:       ep.ego.AngularVelocity().Z,
		ObstacleDistance: ep.wc.ObstacleReading().Distance,
		State:            ep.wc.State(),
	}
	ep.trace.Samples = append(ep.trace.Samples, sample)

	for i, a := range ep.actors {
		p, err := a.Pose(ctx)
		if err != nil {
			return err
		}
		ep.trace.Actors[i].Track = append(ep.trace.Actors[i].Track, r3.Vector{X: p.Point().X, Y: p.Point().Y})
	}
	return nil
}
