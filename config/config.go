// Package config defines the scenario files that describe a closed-loop driving run.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/e2edrive/control"
	"go.viam.com/e2edrive/spatialmath"
	"go.viam.com/e2edrive/utils"
)

// Scenario defaults.
const (
	DefaultTickHz   = 20.0
	DefaultDuration = time.Minute
	defaultEgoName  = "ego"
)

// Scenario describes the world, the ego vehicle and the controller settings of one run.
type Scenario struct {
	ConfigFilePath string `json:"-"`

	Name     string  `json:"name,omitempty"`
	TickHz   float64 `json:"tick_hz,omitempty"`
	Duration string  `json:"duration,omitempty"`
	Debug    bool    `json:"debug,omitempty"`

	Ego       ActorConfig   `json:"ego"`
	Waypoints []r2.Point    `json:"waypoints,omitempty"`
	Road      []r2.Point    `json:"road,omitempty"`
	Actors    []ActorConfig `json:"actors,omitempty"`

	// Controller holds loosely typed controller attributes, see control.Config.
	Controller map[string]interface{} `json:"controller,omitempty"`

	duration time.Duration
}

// ActorConfig places a vehicle in the world. Other actors keep their velocity for the whole run.
type ActorConfig struct {
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	YawDeg    float64 `json:"yaw_deg,omitempty"`
	VelocityX float64 `json:"velocity_x,omitempty"`
	VelocityY float64 `json:"velocity_y,omitempty"`
	Static    bool    `json:"static,omitempty"`
}

// Pose returns the actor's start pose.
func (a ActorConfig) Pose() spatialmath.Pose {
	return spatialmath.NewPose(r3.Vector{X: a.X, Y: a.Y}, spatialmath.NewYaw(utils.DegToRad(a.YawDeg)))
}

// Velocity returns the actor's constant velocity.
func (a ActorConfig) Velocity() r3.Vector {
	return r3.Vector{X: a.VelocityX, Y: a.VelocityY}
}

// Validate ensures the actor has a name and finite values.
func (a *ActorConfig) Validate(path string) error {
	if a.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	for name, v := range map[string]float64{
		"x": a.X, "y": a.Y, "yaw_deg": a.YawDeg, "velocity_x": a.VelocityX, "velocity_y": a.VelocityY,
	} {
		if !utils.IsFinite(v) {
			return goutils.NewConfigValidationError(path, utils.NewNonFiniteError(name, v))
		}
	}
	if a.Static && (a.VelocityX != 0 || a.VelocityY != 0) {
		return goutils.NewConfigValidationError(path, errors.New("a static actor cannot have a velocity"))
	}
	return nil
}

// Ensure fills in defaults and validates the scenario.
func (s *Scenario) Ensure() error {
	if s.TickHz == 0 {
		s.TickHz = DefaultTickHz
	}
	if s.Ego.Name == "" {
		s.Ego.Name = defaultEgoName
	}
	s.duration = DefaultDuration
	if s.Duration != "" {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return goutils.NewConfigValidationError("duration", err)
		}
		if d <= 0 {
			return goutils.NewConfigValidationError("duration", errors.Errorf("duration must be positive, got %v", d))
		}
		s.duration = d
	}
	return s.Validate("")
}

// Validate ensures all parts of the scenario are valid.
func (s *Scenario) Validate(path string) error {
	if err := s.LoopConfig().Validate(); err != nil {
		return goutils.NewConfigValidationError(join(path, "tick_hz"), err)
	}
	if err := s.Ego.Validate(join(path, "ego")); err != nil {
		return err
	}
	if s.Ego.Static {
		return goutils.NewConfigValidationError(join(path, "ego"), errors.New("the ego vehicle cannot be static"))
	}
	if len(s.Waypoints) == 0 && len(s.Road) == 0 {
		return goutils.NewConfigValidationError(path, errors.New("either waypoints or road is required"))
	}
	if len(s.Road) == 1 {
		return goutils.NewConfigValidationError(join(path, "road"), errors.New("a road needs at least two points"))
	}
	for i, p := range append(append([]r2.Point(nil), s.Waypoints...), s.Road...) {
		if !utils.IsFinite(p.X) || !utils.IsFinite(p.Y) {
			return goutils.NewConfigValidationError(path, errors.Errorf("point %d is not finite: %v", i, p))
		}
	}

	names := map[string]bool{s.Ego.Name: true}
	for i := range s.Actors {
		actorPath := join(path, fmt.Sprintf("actors.%d", i))
		if err := s.Actors[i].Validate(actorPath); err != nil {
			return err
		}
		if names[s.Actors[i].Name] {
			return goutils.NewConfigValidationError(actorPath, errors.Errorf("duplicate actor name %q", s.Actors[i].Name))
		}
		names[s.Actors[i].Name] = true
	}

	cfg, err := control.NewConfigFromAttributes(s.Controller)
	if err != nil {
		return goutils.NewConfigValidationError(join(path, "controller"), err)
	}
	return cfg.Validate(join(path, "controller"))
}

// MaxDuration is the simulated time after which a run gives up.
func (s *Scenario) MaxDuration() time.Duration {
	if s.duration == 0 {
		return DefaultDuration
	}
	return s.duration
}

// LoopConfig returns the tick rate of the run.
func (s *Scenario) LoopConfig() control.LoopConfig {
	return control.LoopConfig{Frequency: s.TickHz}
}

// MaxSteps is the number of ticks that fit in MaxDuration.
func (s *Scenario) MaxSteps() int {
	return int(math.Ceil(s.MaxDuration().Seconds() * s.TickHz))
}

// ControllerConfig decodes the controller attributes.
func (s *Scenario) ControllerConfig() (*control.Config, error) {
	return control.NewConfigFromAttributes(s.Controller)
}

// WaypointPoses returns the external waypoints as poses.
func (s *Scenario) WaypointPoses() []spatialmath.Pose {
	poses := make([]spatialmath.Pose, 0, len(s.Waypoints))
	for _, p := range s.Waypoints {
		poses = append(poses, spatialmath.NewPoseFromPoint(r3.Vector{X: p.X, Y: p.Y}))
	}
	return poses
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
