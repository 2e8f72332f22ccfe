package dataset

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"
)

func TestCommandOneHot(t *testing.T) {
	hot, err := CommandVoid.OneHot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hot, test.ShouldResemble, [NumCommands]float64{0, 0, 0, 1, 0, 0})

	hot, err = CommandStraight.OneHot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hot, test.ShouldResemble, [NumCommands]float64{0, 0, 1, 0, 0, 0})

	for _, c := range []Command{0, 7, -2} {
		_, err := c.OneHot()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "out of range")
	}

	idx, err := CommandChangeLaneRight.Index()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldEqual, 5)
	test.That(t, CommandLaneFollow.String(), test.ShouldEqual, "lane_follow")
	test.That(t, Command(42).String(), test.ShouldEqual, "unknown")
}

func straightSample() Sample {
	return Sample{
		FrontImage: "rgb/0001.png",
		Speed:      4.2,
		FutureX:    []float64{1, 2, 3, 4},
		FutureY:    []float64{0, 0, 0, 0},
		TargetX:    10,
		TargetY:    0,
		Command:    CommandStraight,
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestPrepareTargets(t *testing.T) {
	t.Run("zero heading", func(t *testing.T) {
		targets, err := PrepareTargets(straightSample())
		test.That(t, err, test.ShouldBeNil)
		expected := [NumWaypoints]r2.Point{{X: 1}, {X: 2}, {X: 3}, {X: 4}}
		test.That(t, cmp.Diff(expected, targets.Waypoints, approx), test.ShouldBeEmpty)
		test.That(t, cmp.Diff(r2.Point{X: 10}, targets.TargetPoint, approx), test.ShouldBeEmpty)
		test.That(t, targets.Speed, test.ShouldEqual, 4.2)
		test.That(t, targets.Command, test.ShouldResemble, [NumCommands]float64{0, 0, 1, 0, 0, 0})
	})

	t.Run("nan heading is zero", func(t *testing.T) {
		s := straightSample()
		s.Theta = math.NaN()
		withNaN, err := PrepareTargets(s)
		test.That(t, err, test.ShouldBeNil)
		s.Theta = 0
		withZero, err := PrepareTargets(s)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmp.Diff(withZero, withNaN, approx), test.ShouldBeEmpty)
	})

	t.Run("ego offset and heading", func(t *testing.T) {
		s := straightSample()
		s.X, s.Y = 5, -3
		s.FutureX = []float64{6, 7, 8, 9}
		s.FutureY = []float64{-3, -3, -3, -3}
		s.Theta = math.Pi / 2
		targets, err := PrepareTargets(s)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, targets.Waypoints[0].X, test.ShouldAlmostEqual, 0)
		test.That(t, targets.Waypoints[0].Y, test.ShouldAlmostEqual, -1)
		test.That(t, targets.Waypoints[3].Y, test.ShouldAlmostEqual, -4)
	})

	t.Run("invalid input", func(t *testing.T) {
		s := straightSample()
		s.Command = 0
		_, err := PrepareTargets(s)
		test.That(t, err, test.ShouldNotBeNil)

		s = straightSample()
		s.FutureY = s.FutureY[:2]
		_, err = PrepareTargets(s)
		test.That(t, err, test.ShouldNotBeNil)

		_, err = PrepareAll([]Sample{straightSample(), s})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "sample 1")
	})
}

func TestReadSamples(t *testing.T) {
	input := `[{"front_img": "rgb/0001.png", "input_x": 1, "input_y": 2, "input_theta": 0.5, "speed": 3,
		"future_x": [1, 2, 3, 4], "future_y": [0, 0, 0, 0], "x_target": 10, "y_target": 0, "target_command": -1}]`
	samples, err := ReadSamples(strings.NewReader(input))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, samples, test.ShouldHaveLength, 1)
	test.That(t, samples[0].Command, test.ShouldEqual, CommandVoid)
	test.That(t, samples[0].Theta, test.ShouldEqual, 0.5)

	targets, err := PrepareAll(samples)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, targets, test.ShouldHaveLength, 1)

	_, err = ReadSamples(strings.NewReader("{"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScaleAndCrop(t *testing.T) {
	img := imaging.New(600, 400, color.NRGBA{R: 200, A: 255})

	out, err := ScaleAndCrop(img, 1, DefaultCropWidth, DefaultCropHeight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, DefaultCropWidth)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, DefaultCropHeight)

	out, err = ScaleAndCrop(img, 1.5, 100, 50)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 100, 50))

	_, err = ScaleAndCrop(img, 4, DefaultCropWidth, DefaultCropHeight)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ScaleAndCrop(img, 0, 10, 10)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadFrontImage(t *testing.T) {
	root := t.TempDir()
	s := straightSample()
	path := filepath.Join(root, "frame.png")
	test.That(t, imaging.Save(imaging.New(8, 6, color.NRGBA{G: 255, A: 255}), path), test.ShouldBeNil)

	s.FrontImage = "frame.png"
	img, err := LoadFrontImage(root, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 8)

	s.FrontImage = "missing.png"
	_, err = LoadFrontImage(root, s)
	test.That(t, err, test.ShouldNotBeNil)
}
