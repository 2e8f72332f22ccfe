package simulation

import (
	"image/color"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/e2edrive/components/vehicle/fake"
	"go.viam.com/e2edrive/config"
	"go.viam.com/e2edrive/control"
)

// Outcome is how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeGoalReached Outcome = "goal_reached"
	OutcomeRoadEnded   Outcome = "road_ended"
	OutcomeTimedOut    Outcome = "timed_out"
	OutcomeCanceled    Outcome = "canceled"
)

// Sample is the ego vehicle's state after one tick.
type Sample struct {
	Time             time.Duration
	Position         r3.Vector
	YawDeg           float64
	Velocity         r3.Vector
	YawRateDeg       float64
	ObstacleDistance float64
	State            control.State
}

// Speed is the planar speed of the sample.
func (s Sample) Speed() float64 {
	return math.Hypot(s.Velocity.X, s.Velocity.Y)
}

// ActorTrack is the path of one other actor.
type ActorTrack struct {
	Name   string
	Static bool
	Track  []r3.Vector
}

// Trace is everything recorded during a run.
type Trace struct {
	Scenario  string
	Outcome   Outcome
	Waypoints []r2.Point
	Road      []r2.Point
	Samples   []Sample
	Actors    []ActorTrack
}

func newTrace(scenario *config.Scenario, actors []*fake.Vehicle) *Trace {
	t := &Trace{
		Scenario:  scenario.Name,
		Waypoints: scenario.Waypoints,
		Road:      scenario.Road,
	}
	for i, a := range actors {
		t.Actors = append(t.Actors, ActorTrack{Name: a.Name(), Static: scenario.Actors[i].Static})
	}
	return t
}

// Summary condenses a trace.
type Summary struct {
	Outcome             Outcome
	Steps               int
	SimulatedTime       time.Duration
	DistanceTravelled   float64
	MeanSpeed           float64
	MaxSpeed            float64
	MinObstacleDistance float64
	FinalPosition       r3.Vector
}

// Summary computes the summary of the trace. MinObstacleDistance is +Inf when nothing was ever
// detected.
func (t *Trace) Summary() Summary {
	s := Summary{Outcome: t.Outcome, Steps: len(t.Samples), MinObstacleDistance: math.Inf(1)}
	if len(t.Samples) == 0 {
		return s
	}
	last := t.Samples[len(t.Samples)-1]
	s.SimulatedTime = last.Time
	s.FinalPosition = last.Position

	speeds := make([]float64, len(t.Samples))
	obstacles := make([]float64, len(t.Samples))
	for i, sample := range t.Samples {
		speeds[i] = sample.Speed()
		obstacles[i] = sample.ObstacleDistance
		if i > 0 {
			s.DistanceTravelled += sample.Position.Sub(t.Samples[i-1].Position).Norm()
		}
	}
	s.MeanSpeed = stat.Mean(speeds, nil)
	s.MaxSpeed = floats.Max(speeds)
	s.MinObstacleDistance = floats.Min(obstacles)
	return s
}

var (
	roadColor     = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	egoColor      = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	waypointColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	actorColor    = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Plot renders a top-down view of the road, the waypoints and every track to path. The image
// format follows the file extension.
func (t *Trace) Plot(path string) error {
	p := plot.New()
	p.Title.Text = "Scenario " + t.Scenario
	if t.Outcome != "" {
		p.Title.Text += " (" + string(t.Outcome) + ")"
	}
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if len(t.Road) > 0 {
		road, err := plotter.NewLine(pointsXY(t.Road))
		if err != nil {
			return errors.Wrap(err, "road")
		}
		road.Color = roadColor
		road.Width = vg.Points(4)
		p.Add(road)
		p.Legend.Add("road", road)
	}

	if len(t.Waypoints) > 0 {
		waypoints, err := plotter.NewScatter(pointsXY(t.Waypoints))
		if err != nil {
			return errors.Wrap(err, "waypoints")
		}
		waypoints.GlyphStyle.Color = waypointColor
		waypoints.GlyphStyle.Shape = draw.CrossGlyph{}
		waypoints.GlyphStyle.Radius = vg.Points(4)
		p.Add(waypoints)
		p.Legend.Add("waypoints", waypoints)
	}

	for _, actor := range t.Actors {
		if len(actor.Track) == 0 {
			continue
		}
		if actor.Static {
			parked, err := plotter.NewScatter(vectorsXY(actor.Track[:1]))
			if err != nil {
				return errors.Wrap(err, actor.Name)
			}
			parked.GlyphStyle.Color = actorColor
			parked.GlyphStyle.Shape = draw.BoxGlyph{}
			p.Add(parked)
			p.Legend.Add(actor.Name, parked)
			continue
		}
		track, err := plotter.NewLine(vectorsXY(actor.Track))
		if err != nil {
			return errors.Wrap(err, actor.Name)
		}
		track.Color = actorColor
		track.Width = vg.Points(1)
		track.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(track)
		p.Legend.Add(actor.Name, track)
	}

	if len(t.Samples) > 0 {
		positions := make([]r3.Vector, len(t.Samples))
		for i, s := range t.Samples {
			positions[i] = s.Position
		}
		ego, err := plotter.NewLine(vectorsXY(positions))
		if err != nil {
			return errors.Wrap(err, "ego")
		}
		ego.Color = egoColor
		ego.Width = vg.Points(1.5)
		p.Add(ego)
		p.Legend.Add("ego", ego)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

func pointsXY(points []r2.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}

func vectorsXY(vectors []r3.Vector) plotter.XYs {
	xys := make(plotter.XYs, len(vectors))
	for i, v := range vectors {
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	return xys
}
