package cli

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/e2edrive/config"
	"go.viam.com/e2edrive/simulation"
)

// SimulateAction runs a scenario and prints a summary of the run.
func SimulateAction(cCtx *cli.Context) error {
	logger := newLogger(cCtx, "simulate")

	scenario, err := config.Read(cCtx.Context, cCtx.Path(flagScenario), logger)
	if err != nil {
		return err
	}

	trace, err := simulation.Run(cCtx.Context, scenario, logger, simulation.Options{Realtime: cCtx.Bool(flagRealtime)})
	if err != nil {
		return err
	}

	summary := trace.Summary()
	t := table.NewWriter()
	t.SetTitle("Scenario " + scenario.Name)
	t.AppendRows([]table.Row{
		{"Outcome", summary.Outcome},
		{"Steps", summary.Steps},
		{"Simulated time", summary.SimulatedTime},
		{"Distance travelled", fmt.Sprintf("%.2f m", summary.DistanceTravelled)},
		{"Mean speed", fmt.Sprintf("%.2f m/s", summary.MeanSpeed)},
		{"Max speed", fmt.Sprintf("%.2f m/s", summary.MaxSpeed)},
		{"Closest obstacle", formatDistance(summary.MinObstacleDistance)},
		{"Final position", fmt.Sprintf("X:%.2f, Y:%.2f", summary.FinalPosition.X, summary.FinalPosition.Y)},
	})
	printf(cCtx.App.Writer, "%s", t.Render())

	if summary.Outcome == simulation.OutcomeTimedOut {
		warningf(cCtx.App.Writer, "scenario did not finish within %v", scenario.MaxDuration())
	}

	if path := cCtx.Path(flagPlot); path != "" {
		if err := trace.Plot(path); err != nil {
			return err
		}
		infof(cCtx.App.Writer, "plot written to %s", path)
	}
	return nil
}

func formatDistance(d float64) string {
	if math.IsInf(d, 1) {
		return "none detected"
	}
	return fmt.Sprintf("%.2f m", d)
}
