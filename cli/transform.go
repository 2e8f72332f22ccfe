package cli

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/e2edrive/spatialmath"
)

// TransformAction converts a single point between the world and the agent frame.
func TransformAction(cCtx *cli.Context, toAgent bool) error {
	for _, name := range []string{flagX, flagY} {
		if !cCtx.IsSet(name) {
			return errors.Errorf("missing required flag --%s", name)
		}
	}
	p := r2.Point{X: cCtx.Float64(flagX), Y: cCtx.Float64(flagY)}
	agent := r2.Point{X: cCtx.Float64(flagAgentX), Y: cCtx.Float64(flagAgentY)}
	yaw := cCtx.Float64(flagYaw)

	var out r2.Point
	if toAgent {
		out = spatialmath.ToAgentFrame(p, agent, yaw)
	} else {
		out = spatialmath.ToWorldFrame(p, agent, yaw)
	}
	printf(cCtx.App.Writer, "%.6f %.6f", out.X, out.Y)
	return nil
}

// TransformBetweenAction moves points from the --from frame to the --to frame.
func TransformBetweenAction(cCtx *cli.Context) error {
	from, err := parseFrame(cCtx.String(flagFrom))
	if err != nil {
		return err
	}
	to, err := parseFrame(cCtx.String(flagTo))
	if err != nil {
		return err
	}

	list, ok := cCtx.Generic(flagPoint).(*pointList)
	if !ok || len(*list) == 0 {
		return errors.Errorf("missing required flag --%s", flagPoint)
	}
	points := []r3.Vector(*list)

	moved, err := spatialmath.TransformPointsBetweenFrames(points, from, to)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Input", "Output"})
	for i := range points {
		t.AppendRow(table.Row{i, formatVector(points[i]), formatVector(moved[i])})
	}
	printf(cCtx.App.Writer, "%s", t.Render())
	return nil
}

// RotationAction prints the rotation matrix and quaternion of the given euler angles.
func RotationAction(cCtx *cli.Context) error {
	rm := spatialmath.NewRotationMatrixFromEulerDegrees(
		cCtx.Float64(flagRoll), cCtx.Float64(flagPitch), cCtx.Float64(flagYaw))

	t := table.NewWriter()
	t.SetTitle("Rotation matrix")
	for row := 0; row < 3; row++ {
		r := rm.Row(row)
		t.AppendRow(table.Row{fmt.Sprintf("%.6f", r.X), fmt.Sprintf("%.6f", r.Y), fmt.Sprintf("%.6f", r.Z)})
	}
	printf(cCtx.App.Writer, "%s", t.Render())

	q := rm.Quaternion()
	printf(cCtx.App.Writer, "Quaternion: W:%.6f, X:%.6f, Y:%.6f, Z:%.6f", q.Real, q.Imag, q.Jmag, q.Kmag)
	roll, pitch, yaw := rm.EulerAngles().Degrees()
	printf(cCtx.App.Writer, "Euler (deg): Roll:%.2f, Pitch:%.2f, Yaw:%.2f", roll, pitch, yaw)
	return nil
}

func parseFrame(raw string) (spatialmath.Frame2D, error) {
	xyYaw, err := parseFloats(raw, 3)
	if err != nil {
		return spatialmath.Frame2D{}, err
	}
	return spatialmath.Frame2D{X: xyYaw[0], Y: xyYaw[1], Yaw: xyYaw[2]}, nil
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", v.X, v.Y, v.Z)
}

// pointList collects repeated --point flags. Each value is a whole "x,y,z" triple, so commas are
// not treated as list separators.
type pointList []r3.Vector

func (pl *pointList) Set(raw string) error {
	xyz, err := parseFloats(raw, 3)
	if err != nil {
		return err
	}
	*pl = append(*pl, r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	return nil
}

func (pl *pointList) String() string {
	if pl == nil {
		return ""
	}
	out := make([]string, 0, len(*pl))
	for _, p := range *pl {
		out = append(out, fmt.Sprintf("%g,%g,%g", p.X, p.Y, p.Z))
	}
	return strings.Join(out, " ")
}
