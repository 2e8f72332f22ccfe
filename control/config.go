package control

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Obstacle sensor settings. The sensor always looks at least minObstacleSensorRange ahead.
const (
	minObstacleSensorRange = 250.0
	obstacleHitRadius      = 1.0
)

// Config configures a WaypointController. Attribute names follow the scenario files.
type Config struct {
	ConsiderObstacles  bool    `json:"consider_obstacles"`
	ProximityThreshold float64 `json:"proximity_threshold"`
	AttachCamera       bool    `json:"attach_camera"`
	TargetSpeed        float64 `json:"target_speed"`
	// CameraSnapshotDir, when set together with AttachCamera, receives a downscaled PNG of the
	// latest debug frame on every tick that saw a new frame.
	CameraSnapshotDir string `json:"camera_snapshot_dir"`
}

// NewDefaultConfig returns a config that ignores obstacles and does not attach a camera.
func NewDefaultConfig() *Config {
	return &Config{ProximityThreshold: math.Inf(1)}
}

// NewConfigFromAttributes decodes loosely typed controller attributes, such as
// {"consider_obstacles": "true", "proximity_threshold": "15"}, on top of the defaults.
func NewConfigFromAttributes(attrs map[string]interface{}) (*Config, error) {
	cfg := NewDefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "invalid controller attributes")
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if math.IsNaN(cfg.ProximityThreshold) || cfg.ProximityThreshold < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("proximity_threshold must be non-negative, got %v", cfg.ProximityThreshold))
	}
	if math.IsNaN(cfg.TargetSpeed) || math.IsInf(cfg.TargetSpeed, 0) || cfg.TargetSpeed < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("target_speed must be finite and non-negative, got %v", cfg.TargetSpeed))
	}
	if cfg.CameraSnapshotDir != "" && !cfg.AttachCamera {
		return goutils.NewConfigValidationFieldRequiredError(path, "attach_camera")
	}
	return nil
}

// obstacleSensorAttributes are the attributes of the forward obstacle sensor.
func (cfg *Config) obstacleSensorAttributes() map[string]interface{} {
	return map[string]interface{}{
		"distance":      math.Max(cfg.ProximityThreshold, minObstacleSensorRange),
		"hit_radius":    obstacleHitRadius,
		"only_dynamics": true,
	}
}
