package control

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/e2edrive/logging"
	"go.viam.com/e2edrive/utils"
)

// maxLoopFrequency is the highest tick rate a Loop accepts, in Hz.
const maxLoopFrequency = 200.0

// Stepper is something ticked by a Loop, such as a WaypointController.
type Stepper interface {
	RunStep(ctx context.Context) error
}

// LoopConfig configures a Loop.
type LoopConfig struct {
	Frequency float64 `json:"frequency"`
}

// Validate ensures the frequency is within (0, 200] Hz.
func (cfg LoopConfig) Validate() error {
	if math.IsNaN(cfg.Frequency) || cfg.Frequency <= 0 || cfg.Frequency > maxLoopFrequency {
		return errors.Errorf("loop frequency shouldn't be 0 or above %vHz, got %v", maxLoopFrequency, cfg.Frequency)
	}
	return nil
}

// Loop ticks a Stepper at a fixed frequency on a background worker. It stops on the first failing
// step, since a controller that cannot read its pose cannot drive safely.
type Loop struct {
	cfg     LoopConfig
	logger  logging.Logger
	clock   clock.Clock
	stepper Stepper
	dt      time.Duration

	ticks atomic.Int64

	mu      sync.Mutex
	workers utils.StoppableWorkers
	err     error
	done    chan struct{}
}

// NewLoop constructs a new control loop for stepper.
func NewLoop(logger logging.Logger, cfg LoopConfig, clk clock.Clock, stepper Stepper) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stepper == nil {
		return nil, errors.New("loop needs something to step")
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("control_loop")
	}
	return &Loop{
		cfg:     cfg,
		logger:  logger,
		clock:   clk,
		stepper: stepper,
		dt:      time.Duration(float64(time.Second) / cfg.Frequency),
	}, nil
}

// Start starts the loop.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers != nil {
		return errors.New("control loop already started")
	}

	l.logger.CInfof(ctx, "running loop at %1.4fHz (%v)", l.cfg.Frequency, l.dt)
	ticker := l.clock.Ticker(l.dt)
	l.done = make(chan struct{})
	done := l.done
	l.workers = utils.NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := l.stepper.RunStep(ctx); err != nil {
				if ctx.Err() == nil {
					l.logger.Errorw("control step failed, stopping loop", "error", err, "tick", l.ticks.Load())
				}
				l.setErr(err)
				return
			}
			l.ticks.Inc()
		}
	})
	return nil
}

func (l *Loop) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Err returns the error of the step that stopped the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Done is closed once the loop's worker has exited. It is nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Ticks returns the number of successful steps.
func (l *Loop) Ticks() int64 {
	return l.ticks.Load()
}

// Frequency returns the loop's frequency.
func (l *Loop) Frequency() float64 {
	return l.cfg.Frequency
}

// Period returns the time between ticks.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Stop stops the loop and waits for the current step to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	workers := l.workers
	l.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}
}
