package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surfviz/pkg/colormap"
	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/pipeline"
	"github.com/matzehuels/surfviz/pkg/projection"
)

// mollweideFlags holds the command-line flags for the mollweide command.
type mollweideFlags struct {
	table      string
	spheres    []string
	outputDir  string
	name       string
	colormap   string
	format     string
	width      float64
	height     float64
	pointScale float64
	useCache   bool
	refresh    bool
}

// mollweideCommand creates the mollweide command for projection images.
func (c *CLI) mollweideCommand() *cobra.Command {
	var flags mollweideFlags

	cmd := &cobra.Command{
		Use:   "mollweide [overlay...]",
		Short: "Draw overlays on a Mollweide projection",
		Long: `Draw overlays on a Mollweide projection.

Every overlay value is drawn as a point at the projected position of its
vertex. Point color follows the colormap; point area grows with the
magnitude of the value. The image is written as <overlay>.<format>.

Projected positions come from a CSV table with x and y columns, one row per
vertex (default: ./projected.csv). Create one with 'surfviz project', or pass
--sphere to project the hemisphere's sphere surface on the fly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := c.mollweideRuns(cmd, args, flags)
			if err != nil {
				return err
			}
			return c.runMollweide(cmd.Context(), runs, flags.useCache)
		},
	}

	cmd.Flags().StringVarP(&flags.table, "table", "t", projection.DefaultTable, "projection table CSV")
	cmd.Flags().StringSliceVar(&flags.spheres, "sphere", nil, "sphere surface for each overlay, in order (replaces --table)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", ".", "directory for the images")
	cmd.Flags().StringVar(&flags.name, "name", "", "base name for the image (single overlay only)")
	cmd.Flags().StringVarP(&flags.colormap, "colormap", "c", colormap.Default, "colormap: "+colormapNames())
	cmd.Flags().StringVarP(&flags.format, "format", "f", pipeline.DefaultImageFormat, "image format: "+strings.Join(projection.Formats, ", "))
	cmd.Flags().Float64Var(&flags.width, "width", pipeline.DefaultWidth, "image width in inches")
	cmd.Flags().Float64Var(&flags.height, "height", pipeline.DefaultHeight, "image height in inches")
	cmd.Flags().Float64Var(&flags.pointScale, "point-scale", pipeline.DefaultPointScale, "point area per unit of overlay value, in square points")
	cmd.Flags().BoolVar(&flags.useCache, "cache", false, "reuse cached artifacts for unchanged inputs")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts")
	cmd.MarkFlagsMutuallyExclusive("table", "sphere")

	return cmd
}

// mollweideRuns builds one option set per overlay.
func (c *CLI) mollweideRuns(cmd *cobra.Command, overlays []string, f mollweideFlags) ([]pipeline.Options, error) {
	if len(f.spheres) > 0 && len(f.spheres) != len(overlays) {
		return nil, fmt.Errorf("got %d overlays but %d spheres", len(overlays), len(f.spheres))
	}
	if f.name != "" && len(overlays) > 1 {
		return nil, fmt.Errorf("--name needs a single overlay")
	}

	runs := make([]pipeline.Options, len(overlays))
	for i, overlay := range overlays {
		opts := c.baseOptions()
		opts.Overlay = overlay
		opts.Name = f.name
		opts.Refresh = f.refresh
		override(cmd, "table", &opts.ProjectionTable, f.table)
		override(cmd, "output-dir", &opts.OutputDir, f.outputDir)
		override(cmd, "colormap", &opts.Colormap, f.colormap)
		override(cmd, "format", &opts.ImageFormat, f.format)
		override(cmd, "width", &opts.Width, f.width)
		override(cmd, "height", &opts.Height, f.height)
		override(cmd, "point-scale", &opts.PointScale, f.pointScale)
		if len(f.spheres) > 0 {
			opts.Sphere = f.spheres[i]
			opts.ProjectionTable = ""
		} else if cmd.Flags().Changed("table") {
			opts.Sphere = ""
		}

		if err := opts.ValidateForProjection(); err != nil {
			return nil, err
		}
		runs[i] = opts
	}
	return runs, nil
}

// runMollweide renders every run and prints a summary.
func (c *CLI) runMollweide(ctx context.Context, runs []pipeline.Options, useCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(useCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", plural(len(runs), "projection")))
	spinner.Start()

	prog := newProgress(logger)
	results, err := runner.RenderHemispheres(ctx, runs)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		if errors.Is(err, errors.ErrCodeMissingProjection) {
			printNextStep("Create the table with", "surfviz project <sphere> -o "+projection.DefaultTable)
		}
		return fmt.Errorf("mollweide: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %s", plural(len(results), "projection")))

	printTable(projectionTable(runs, results))
	for _, res := range results {
		printFile(res.ImagePath)
	}
	return nil
}

func colormapNames() string {
	return strings.Join(colormap.Names(), ", ")
}
