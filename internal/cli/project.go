package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surfviz/pkg/projection"
)

// projectCommand creates the project command, which writes the projection
// table read by 'mollweide'.
func (c *CLI) projectCommand() *cobra.Command {
	var (
		output   string
		useCache bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "project [sphere]",
		Short: "Compute a Mollweide projection table from a sphere surface",
		Long: `Compute a Mollweide projection table from a sphere surface.

Each vertex of the sphere (for example lh.sphere) is converted to longitude
and latitude around the sphere's center and projected with the Mollweide
equal-area projection. The table is written as CSV with one row per vertex
and columns x and y. Use "-o -" to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProject(cmd.Context(), args[0], output, useCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", projection.DefaultTable, "output CSV file")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse a cached table for an unchanged sphere")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached tables")

	return cmd
}

// runProject projects the sphere and writes the table.
func (c *CLI) runProject(ctx context.Context, sphere, output string, useCache, refresh bool) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Projecting %s", sphere)

	runner, err := c.newRunner(useCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	table, _, hit, err := runner.ProjectSphere(ctx, sphere, refresh)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	prog.done(fmt.Sprintf("Projected %d vertices", len(table)))

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := projection.WriteTable(out, table); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	printSuccess("Wrote projection table")
	printKeyValue("points", strconv.Itoa(len(table)))
	printKeyValue("cached", strconv.FormatBool(hit))
	printFile(output)
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// "-" selects os.Stdout; anything else is created, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
