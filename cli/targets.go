package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/e2edrive/dataset"
)

// TargetsAction reads samples, prepares their training targets and prints them as a table. With
// --crop-out it also writes each sample's front image, scaled and center cropped.
func TargetsAction(cCtx *cli.Context) error {
	logger := newLogger(cCtx, "targets")

	f, err := os.Open(cCtx.Path(flagSamples))
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	samples, err := dataset.ReadSamples(f)
	if err != nil {
		return err
	}
	targets, err := dataset.PrepareAll(samples)
	if err != nil {
		return err
	}
	logger.Debugw("prepared targets", "samples", len(samples))

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Command", "Target", "Speed", "Waypoints"})
	limit := cCtx.Int(flagLimit)
	for i, target := range targets {
		if limit > 0 && i >= limit {
			break
		}
		waypoints := lo.Map(target.Waypoints[:], func(p r2.Point, _ int) string { return formatPoint(p) })
		t.AppendRow(table.Row{
			i,
			samples[i].Command.String(),
			formatPoint(target.TargetPoint),
			fmt.Sprintf("%.2f", target.Speed),
			strings.Join(waypoints, " "),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d samples", len(targets))})
	printf(cCtx.App.Writer, "%s", t.Render())
	if limit > 0 && len(targets) > limit {
		warningf(cCtx.App.Writer, "only the first %d of %d samples are shown", limit, len(targets))
	}

	outDir := cCtx.Path(flagCropOut)
	if outDir == "" {
		return nil
	}
	if err := ensureDir(outDir); err != nil {
		return err
	}
	root := cCtx.Path(flagImageRoot)
	if root == "" {
		root = filepath.Dir(cCtx.Path(flagSamples))
	}
	scale := cCtx.Float64(flagImageScale)
	for i, s := range samples {
		img, err := dataset.LoadFrontImage(root, s)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		cropped, err := dataset.ScaleAndCrop(img, scale, dataset.DefaultCropWidth, dataset.DefaultCropHeight)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		path := filepath.Join(outDir, fmt.Sprintf("sample_%06d.png", i))
		if err := imaging.Save(cropped, path); err != nil {
			return errors.Wrapf(err, "failed to save %q", path)
		}
	}
	infof(cCtx.App.Writer, "wrote %d cropped front images to %s", len(samples), outDir)
	return nil
}

func formatPoint(p r2.Point) string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}
