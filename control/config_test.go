package control

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestNewConfigFromAttributes(t *testing.T) {
	cfg, err := NewConfigFromAttributes(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConsiderObstacles, test.ShouldBeFalse)
	test.That(t, math.IsInf(cfg.ProximityThreshold, 1), test.ShouldBeTrue)
	test.That(t, cfg.Validate("controller"), test.ShouldBeNil)

	cfg, err = NewConfigFromAttributes(map[string]interface{}{
		"consider_obstacles":  "true",
		"proximity_threshold": "15",
		"attach_camera":       "False",
		"target_speed":        8,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConsiderObstacles, test.ShouldBeTrue)
	test.That(t, cfg.ProximityThreshold, test.ShouldEqual, 15)
	test.That(t, cfg.AttachCamera, test.ShouldBeFalse)
	test.That(t, cfg.TargetSpeed, test.ShouldEqual, 8)

	_, err = NewConfigFromAttributes(map[string]interface{}{"proximity_threshold": "close"})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewConfigFromAttributes(map[string]interface{}{"max_speed": 3})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		err  string
	}{
		{"negative threshold", Config{ProximityThreshold: -1}, "proximity_threshold"},
		{"nan threshold", Config{ProximityThreshold: math.NaN()}, "proximity_threshold"},
		{"negative speed", Config{ProximityThreshold: 1, TargetSpeed: -1}, "target_speed"},
		{"infinite speed", Config{ProximityThreshold: 1, TargetSpeed: math.Inf(1)}, "target_speed"},
		{"snapshots without camera", Config{ProximityThreshold: 1, CameraSnapshotDir: "/tmp/x"}, "attach_camera"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate("scenario.controller")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
			test.That(t, err.Error(), test.ShouldContainSubstring, "scenario.controller")
		})
	}
}

func TestZeroThresholdDisablesAdaptation(t *testing.T) {
	cfg, err := NewConfigFromAttributes(map[string]interface{}{
		"consider_obstacles":  "true",
		"proximity_threshold": "0",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Validate("controller"), test.ShouldBeNil)
	test.That(t, ShapeSpeed(8, 0, cfg.ProximityThreshold, 10, 0, 1), test.ShouldEqual, 8)
	test.That(t, ShapeSpeed(8, 3, cfg.ProximityThreshold, 10, 0, 1), test.ShouldEqual, 8)
}

func TestObstacleSensorAttributes(t *testing.T) {
	cfg := &Config{ProximityThreshold: 15}
	attrs := cfg.obstacleSensorAttributes()
	test.That(t, attrs["distance"], test.ShouldEqual, 250.0)
	test.That(t, attrs["hit_radius"], test.ShouldEqual, 1.0)
	test.That(t, attrs["only_dynamics"], test.ShouldEqual, true)

	cfg.ProximityThreshold = 400
	test.That(t, cfg.obstacleSensorAttributes()["distance"], test.ShouldEqual, 400.0)
}
