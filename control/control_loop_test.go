package control

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/e2edrive/logging"
)

type countingStepper struct {
	stepped chan struct{}
	failAt  int
	calls   int
}

func (s *countingStepper) RunStep(ctx context.Context) error {
	s.calls++
	defer func() { s.stepped <- struct{}{} }()
	if s.failAt > 0 && s.calls >= s.failAt {
		return errors.New("pose unavailable")
	}
	return nil
}

func TestLoopConfig(t *testing.T) {
	for _, hz := range []float64{0, -1, 200.5, math.NaN()} {
		_, err := NewLoop(logging.NewTestLogger(t), LoopConfig{Frequency: hz}, nil, &countingStepper{})
		test.That(t, err, test.ShouldNotBeNil)
	}
	_, err := NewLoop(logging.NewTestLogger(t), LoopConfig{Frequency: 20}, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)

	loop, err := NewLoop(logging.NewTestLogger(t), LoopConfig{Frequency: 200}, nil, &countingStepper{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loop.Frequency(), test.ShouldEqual, 200)
	test.That(t, loop.Period(), test.ShouldEqual, 5*time.Millisecond)
	test.That(t, loop.Done(), test.ShouldBeNil)
}

func TestLoopTicks(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	stepper := &countingStepper{stepped: make(chan struct{}, 1)}
	loop, err := NewLoop(logging.NewTestLogger(t), LoopConfig{Frequency: 10}, mock, stepper)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, loop.Start(ctx), test.ShouldBeNil)
	test.That(t, loop.Start(ctx), test.ShouldNotBeNil)
	for i := 0; i < 3; i++ {
		mock.Add(100 * time.Millisecond)
		<-stepper.stepped
	}
	loop.Stop()
	loop.Stop()

	<-loop.Done()
	test.That(t, loop.Ticks(), test.ShouldEqual, 3)
	test.That(t, loop.Err(), test.ShouldBeNil)
}

func TestLoopStopsOnError(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	stepper := &countingStepper{stepped: make(chan struct{}, 1), failAt: 2}
	logger, logs := logging.NewObservedTestLogger(t)
	loop, err := NewLoop(logger, LoopConfig{Frequency: 50}, mock, stepper)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loop.Start(ctx), test.ShouldBeNil)

	mock.Add(20 * time.Millisecond)
	<-stepper.stepped
	mock.Add(20 * time.Millisecond)
	<-stepper.stepped

	<-loop.Done()
	test.That(t, loop.Err(), test.ShouldNotBeNil)
	test.That(t, loop.Err().Error(), test.ShouldContainSubstring, "pose unavailable")
	test.That(t, loop.Ticks(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("control step failed, stopping loop").Len(), test.ShouldEqual, 1)
	loop.Stop()
}

func TestLoopDrivesController(t *testing.T) {
	h := newHarness(t, straightRoad(t, 100), &Config{ProximityThreshold: math.Inf(1), TargetSpeed: 6})
	loop, err := NewLoop(logging.NewTestLogger(t), LoopConfig{Frequency: 20}, h.clock, h.wc)
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(h.ctx)
	test.That(t, loop.Start(ctx), test.ShouldBeNil)
	for loop.Ticks() == 0 {
		h.clock.Add(loop.Period())
	}
	cancel()
	<-loop.Done()
	loop.Stop()

	h.assertVelocity(t, 6, 0)
	test.That(t, h.wc.State(), test.ShouldEqual, StateFollowing)
}
