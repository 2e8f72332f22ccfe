// Package cli contains the e2edrive command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	flagDebug   = "debug"
	flagLogFile = "log-file"

	flagX      = "x"
	flagY      = "y"
	flagAgentX = "agent-x"
	flagAgentY = "agent-y"
	flagYaw    = "yaw"
	flagRoll   = "roll"
	flagPitch  = "pitch"
	flagPoint  = "point"
	flagFrom   = "from"
	flagTo     = "to"

	flagSamples    = "samples"
	flagImageRoot  = "image-root"
	flagCropOut    = "crop-out"
	flagImageScale = "image-scale"
	flagLimit      = "limit"

	flagScenario = "scenario"
	flagPlot     = "plot"
	flagRealtime = "realtime"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut. Each call builds fresh flags, so no flag state is shared between apps.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Writer:          out,
		ErrWriter:       errOut,
		Name:            "e2edrive",
		Usage:           "frame transforms, training targets and closed-loop waypoint driving",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to a rotating `FILE`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:            "transform",
				Usage:           "convert points between the world and an agent's frame",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:  "to-agent",
						Usage: "express a world point in the agent's frame",
						Flags: agentFrameFlags(),
						Action: func(cCtx *cli.Context) error {
							return TransformAction(cCtx, true)
						},
					},
					{
						Name:  "to-world",
						Usage: "express an agent frame point in the world frame",
						Flags: agentFrameFlags(),
						Action: func(cCtx *cli.Context) error {
							return TransformAction(cCtx, false)
						},
					},
					{
						Name:      "between",
						Usage:     "move points from one planar frame to another, keeping their height",
						UsageText: "e2edrive transform between --from x,y,yaw --to x,y,yaw --point x,y,z [--point x,y,z ...]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: flagFrom, Required: true, Usage: "source frame as `x,y,yaw` (radians)"},
							&cli.StringFlag{Name: flagTo, Required: true, Usage: "target frame as `x,y,yaw` (radians)"},
							&cli.GenericFlag{Name: flagPoint, Required: true, Value: &pointList{}, Usage: "point as `x,y,z`, repeatable"},
						},
						Action: TransformBetweenAction,
					},
					{
						Name:  "rotation",
						Usage: "print the rotation matrix and quaternion of roll, pitch and yaw",
						Flags: []cli.Flag{
							&cli.Float64Flag{Name: flagRoll, Usage: "roll in degrees"},
							&cli.Float64Flag{Name: flagPitch, Usage: "pitch in degrees"},
							&cli.Float64Flag{Name: flagYaw, Usage: "yaw in degrees"},
						},
						Action: RotationAction,
					},
				},
			},
			{
				Name:      "targets",
				Usage:     "prepare ego-relative training targets from logged samples",
				UsageText: "e2edrive targets --samples samples.json [--image-root dir --crop-out dir]",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagSamples, Required: true, Usage: "JSON array of samples in `FILE`"},
					&cli.IntFlag{Name: flagLimit, Value: 20, Usage: "print at most this many rows, 0 for all"},
					&cli.PathFlag{Name: flagImageRoot, Usage: "directory the samples' front images are relative to"},
					&cli.PathFlag{Name: flagCropOut, Usage: "write the scaled and cropped front images to `DIR`"},
					&cli.Float64Flag{Name: flagImageScale, Value: 1, Usage: "downscale factor applied before cropping"},
				},
				Action: TargetsAction,
			},
			{
				Name:      "simulate",
				Usage:     "drive a scenario with the waypoint controller",
				UsageText: "e2edrive simulate --scenario scenario.json [--plot trace.png] [--realtime]",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagScenario, Aliases: []string{"c"}, Required: true, Usage: "load the scenario from `FILE`"},
					&cli.PathFlag{Name: flagPlot, Usage: "render the run to `FILE` (png, svg or pdf)"},
					&cli.BoolFlag{Name: flagRealtime, Usage: "tick at the scenario's rate on the wall clock"},
				},
				Action: SimulateAction,
			},
		},
	}
}

func agentFrameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: flagX, Required: true, Usage: "x of the point"},
		&cli.Float64Flag{Name: flagY, Required: true, Usage: "y of the point"},
		&cli.Float64Flag{Name: flagAgentX, Usage: "x of the agent in the world"},
		&cli.Float64Flag{Name: flagAgentY, Usage: "y of the agent in the world"},
		&cli.Float64Flag{Name: flagYaw, Usage: "heading of the agent in radians"},
	}
}

