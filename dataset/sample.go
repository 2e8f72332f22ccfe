package dataset

import (
	"encoding/json"
	"io"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/e2edrive/spatialmath"
)

// NumWaypoints is the number of future positions supervised per sample.
const NumWaypoints = 4

// Sample is one logged driving record. Field names follow the packed dataset keys.
type Sample struct {
	FrontImage string    `json:"front_img"`
	X          float64   `json:"input_x"`
	Y          float64   `json:"input_y"`
	Theta      float64   `json:"input_theta"`
	Speed      float64   `json:"speed"`
	FutureX    []float64 `json:"future_x"`
	FutureY    []float64 `json:"future_y"`
	TargetX    float64   `json:"x_target"`
	TargetY    float64   `json:"y_target"`
	Command    Command   `json:"target_command"`
}

// Targets are the supervised values prepared from a Sample. All points are in the ego frame.
type Targets struct {
	Waypoints   [NumWaypoints]r2.Point
	TargetPoint r2.Point
	Speed       float64
	Command     [NumCommands]float64
}

// storagePoint swaps a recorded (x, y) pair into the (y, x) order the dataset stores positions in.
func storagePoint(x, y float64) r2.Point {
	return r2.Point{X: y, Y: x}
}

// PrepareTargets converts a sample into ego-relative supervision. A NaN heading is treated as zero.
func PrepareTargets(s Sample) (Targets, error) {
	var out Targets
	if len(s.FutureX) < NumWaypoints || len(s.FutureY) < NumWaypoints {
		return out, errors.Errorf("sample needs %d future positions, got %d x and %d y",
			NumWaypoints, len(s.FutureX), len(s.FutureY))
	}

	cmd, err := s.Command.OneHot()
	if err != nil {
		return out, err
	}

	theta := spatialmath.SanitizeHeading(s.Theta)
	ego := storagePoint(s.X, s.Y)

	future := lo.Zip2(s.FutureX[:NumWaypoints], s.FutureY[:NumWaypoints])
	waypoints := lo.Map(future, func(xy lo.Tuple2[float64, float64], _ int) r2.Point {
		return spatialmath.ToAgentFrame(storagePoint(xy.A, xy.B), ego, theta)
	})
	copy(out.Waypoints[:], waypoints)

	out.TargetPoint = spatialmath.ToAgentFrame(storagePoint(s.TargetX, s.TargetY), ego, theta)
	out.Speed = s.Speed
	out.Command = cmd
	return out, nil
}

// PrepareAll prepares every sample, failing on the first invalid one.
func PrepareAll(samples []Sample) ([]Targets, error) {
	out := make([]Targets, 0, len(samples))
	for i, s := range samples {
		t, err := PrepareTargets(s)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		out = append(out, t)
	}
	return out, nil
}

// ReadSamples decodes a JSON array of samples.
func ReadSamples(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, errors.Wrap(err, "failed to decode samples")
	}
	return samples, nil
}
