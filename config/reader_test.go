package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/e2edrive/logging"
)

const followRoad = `{
	"name": "follow",
	"tick_hz": 10,
	"duration": "30s",
	"ego": {"name": "ego", "x": 0, "y": 0, "yaw_deg": 90},
	"road": [{"x": 0, "y": 0}, {"x": 0, "y": 100}],
	"actors": [{"name": "lead", "x": 0, "y": 20, "velocity_y": 2}],
	"controller": {"consider_obstacles": true, "proximity_threshold": "15", "target_speed": 5}
}`

func TestFromReaderValidate(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	_, err := FromReader(ctx, "somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "EOF")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{"ego": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unmarshal")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{"weather": "rain"}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown field")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "either waypoints or road is required")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{"road": [{"x": 1, "y": 1}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least two points")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "actors": [{}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `actors.0`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"name" is required`)

	_, err = FromReader(ctx, "somepath",
		strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "actors": [{"name": "ego"}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate actor name")

	_, err = FromReader(ctx, "somepath",
		strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "tick_hz": 500}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "tick_hz")

	_, err = FromReader(ctx, "somepath",
		strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "duration": "-1s"}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duration must be positive")

	_, err = FromReader(ctx, "somepath",
		strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "controller": {"warp_speed": 9}}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "controller")

	_, err = FromReader(ctx, "somepath",
		strings.NewReader(`{"waypoints": [{"x": 1, "y": 1}], "controller": {"camera_snapshot_dir": "/tmp"}}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"attach_camera" is required`)

	_, err = FromReader(ctx, "somepath", strings.NewReader(
		`{"waypoints": [{"x": 1, "y": 1}], "actors": [{"name": "parked", "static": true, "velocity_x": 1}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "static actor")
}

func TestFromReaderDefaults(t *testing.T) {
	scenario, err := FromReader(context.Background(), "somepath",
		strings.NewReader(`{"waypoints": [{"x": 10, "y": 0}, {"x": 20, "y": 5}]}`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scenario.ConfigFilePath, test.ShouldEqual, "somepath")
	test.That(t, scenario.TickHz, test.ShouldEqual, DefaultTickHz)
	test.That(t, scenario.Ego.Name, test.ShouldEqual, "ego")
	test.That(t, scenario.MaxDuration(), test.ShouldEqual, DefaultDuration)
	test.That(t, scenario.MaxSteps(), test.ShouldEqual, 1200)
	test.That(t, scenario.Waypoints, test.ShouldResemble, []r2.Point{{X: 10, Y: 0}, {X: 20, Y: 5}})

	poses := scenario.WaypointPoses()
	test.That(t, poses, test.ShouldHaveLength, 2)
	test.That(t, poses[1].Point(), test.ShouldResemble, r3.Vector{X: 20, Y: 5})

	cfg, err := scenario.ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConsiderObstacles, test.ShouldBeFalse)
	test.That(t, cfg.AttachCamera, test.ShouldBeFalse)
}

func TestFromReaderFull(t *testing.T) {
	scenario, err := FromReader(context.Background(), "follow.json", strings.NewReader(followRoad), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scenario.Name, test.ShouldEqual, "follow")
	test.That(t, scenario.MaxDuration(), test.ShouldEqual, 30*time.Second)
	test.That(t, scenario.MaxSteps(), test.ShouldEqual, 300)
	test.That(t, scenario.LoopConfig().Frequency, test.ShouldEqual, 10.0)
	test.That(t, scenario.Road, test.ShouldHaveLength, 2)

	test.That(t, scenario.Actors, test.ShouldHaveLength, 1)
	lead := scenario.Actors[0]
	test.That(t, lead.Velocity(), test.ShouldResemble, r3.Vector{Y: 2})
	test.That(t, lead.Pose().Point(), test.ShouldResemble, r3.Vector{Y: 20})

	egoYaw := scenario.Ego.Pose().Orientation().EulerAngles().YawDegrees()
	test.That(t, egoYaw, test.ShouldAlmostEqual, 90.0)

	cfg, err := scenario.ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConsiderObstacles, test.ShouldBeTrue)
	test.That(t, cfg.ProximityThreshold, test.ShouldEqual, 15.0)
	test.That(t, cfg.TargetSpeed, test.ShouldEqual, 5.0)
}

func TestReadSubstitutesEnvironment(t *testing.T) {
	t.Setenv("E2E_TARGET_SPEED", "7.5")
	path := filepath.Join(t.TempDir(), "scenario.json")
	contents := `{"waypoints": [{"x": 10, "y": 0}], "controller": {"target_speed": ${E2E_TARGET_SPEED}}}`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	scenario, err := Read(context.Background(), path, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scenario.ConfigFilePath, test.ShouldEqual, path)
	cfg, err := scenario.ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.TargetSpeed, test.ShouldEqual, 7.5)

	_, err = Read(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read scenario")
}

func TestScenarioDebugRaisesLogLevel(t *testing.T) {
	InitLoggingSettings(logging.NewTestLogger(t), false)
	t.Cleanup(func() { UpdateFileConfigDebug(false) })
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	_, err := FromReader(context.Background(), "somepath",
		strings.NewReader(`{"debug": true, "waypoints": [{"x": 1, "y": 1}]}`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)

	UpdateFileConfigDebug(false)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	InitLoggingSettings(logging.NewTestLogger(t), true)
	UpdateFileConfigDebug(false)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)
	InitLoggingSettings(logging.NewTestLogger(t), false)
}
