package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surfviz/pkg/colormap"
	"github.com/matzehuels/surfviz/pkg/pipeline"
)

// convertFlags holds the command-line flags for the convert command.
type convertFlags struct {
	surfaces           []string
	outputDir          string
	name               string
	colormap           string
	format             string
	hemisphere         string
	measure            string
	removeIntermediate bool
	useCache           bool
	refresh            bool
}

// convertCommand creates the convert command for mesh export.
func (c *CLI) convertCommand() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert [overlay...] --surface [surface...]",
		Short: "Paint overlays onto surfaces and export glTF scenes",
		Long: `Paint overlays onto surfaces and export glTF scenes.

Each overlay (.mgh, .mgz or a curv-format file such as lh.thickness) is
paired with the --surface given at the same position. For every pair the
command writes <overlay>.ply, an ASCII PLY mesh centered at the origin with
one color per vertex, and then exports that file as <overlay>.gltf.

Pairs are independent and run concurrently, so both hemispheres can be
converted in one call:

  surfviz convert lh.thickness.fwhm10.fsaverage.mgh rh.thickness.fwhm10.fsaverage.mgh \
      -s lh.pial -s rh.pial`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := c.convertRuns(cmd, args, flags)
			if err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), runs, flags.useCache)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.surfaces, "surface", "s", nil, "surface file for each overlay, in order (required)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", ".", "directory for the exported files")
	cmd.Flags().StringVar(&flags.name, "name", "", "base name for the exported files (single overlay only)")
	cmd.Flags().StringVarP(&flags.colormap, "colormap", "c", colormap.Default, "colormap: "+colormapNames())
	cmd.Flags().StringVarP(&flags.format, "format", "f", pipeline.DefaultSceneFormat, "scene format: gltf (default), glb")
	cmd.Flags().StringVar(&flags.hemisphere, "hemisphere", "", "hemisphere label lh or rh (default: from file name)")
	cmd.Flags().StringVar(&flags.measure, "measure", "", "statistic name recorded in the PLY header (default: from file name)")
	cmd.Flags().BoolVar(&flags.removeIntermediate, "remove-intermediate", false, "delete the PLY file after export")
	cmd.Flags().BoolVar(&flags.useCache, "cache", false, "reuse cached artifacts for unchanged inputs")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts")
	_ = cmd.MarkFlagRequired("surface")

	return cmd
}

// convertRuns pairs overlays with surfaces and layers flags over the config.
func (c *CLI) convertRuns(cmd *cobra.Command, overlays []string, f convertFlags) ([]pipeline.Options, error) {
	if len(f.surfaces) != len(overlays) {
		return nil, fmt.Errorf("got %d overlays but %d surfaces", len(overlays), len(f.surfaces))
	}
	if f.name != "" && len(overlays) > 1 {
		return nil, fmt.Errorf("--name needs a single overlay")
	}

	runs := make([]pipeline.Options, len(overlays))
	for i, overlay := range overlays {
		opts := c.baseOptions()
		opts.Overlay = overlay
		opts.Surface = f.surfaces[i]
		opts.Name = f.name
		opts.Hemisphere = f.hemisphere
		opts.Measure = f.measure
		opts.Refresh = f.refresh
		override(cmd, "output-dir", &opts.OutputDir, f.outputDir)
		override(cmd, "colormap", &opts.Colormap, f.colormap)
		override(cmd, "format", &opts.SceneFormat, f.format)
		override(cmd, "remove-intermediate", &opts.RemoveIntermediate, f.removeIntermediate)

		if err := opts.ValidateForMesh(); err != nil {
			return nil, err
		}
		runs[i] = opts
	}
	return runs, nil
}

// runConvert executes the mesh pipeline for every run and prints a summary.
func (c *CLI) runConvert(ctx context.Context, runs []pipeline.Options, useCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(useCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", plural(len(runs), "overlay")))
	spinner.Start()

	prog := newProgress(logger)
	results, err := runner.ConvertHemispheres(ctx, runs)
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return fmt.Errorf("convert: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Converted %s", plural(len(results), "overlay")))

	printTable(meshTable(runs, results))
	for i, res := range results {
		if res.PLYPath != "" {
			printFile(res.PLYPath)
			if runs[i].RemoveIntermediate {
				printWarning("Could not remove %s", res.PLYPath)
			}
		}
		printFile(res.ScenePath)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
