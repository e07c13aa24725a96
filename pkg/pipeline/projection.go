package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/surfviz/pkg/cache"
	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/observability"
	"github.com/matzehuels/surfviz/pkg/projection"
)

// RenderProjection draws the overlay on its Mollweide projection and writes
// <base>.<format> to the output directory.
//
// The projection table comes from opts.Sphere when set (computed on the
// fly) and from opts.ProjectionTable otherwise. A missing table file fails
// with MISSING_PROJECTION.
func (r *Runner) RenderProjection(ctx context.Context, opts Options) (*ProjectionResult, error) {
	if err := opts.ValidateForProjection(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	logger := opts.Logger.With("run", opts.BaseName())

	result := &ProjectionResult{
		RunID:     newRunID(),
		ImagePath: opts.OutputPath(opts.ImageFormat),
	}

	// Stage 1: Load
	loadStart := time.Now()
	overlayData, overlay, err := loadOverlay(ctx, opts.Overlay)
	if err != nil {
		return nil, fmt.Errorf("load overlay: %w", err)
	}

	var table plotter.XYs
	var tableHash string
	if opts.Sphere != "" {
		table, tableHash, result.CacheInfo.TableHit, err = r.ProjectSphere(ctx, opts.Sphere, opts.Refresh)
	} else {
		result.TablePath = opts.ProjectionTable
		table, tableHash, err = loadTable(ctx, opts.ProjectionTable)
	}
	if err != nil {
		return nil, fmt.Errorf("load projection: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.VertexCount = len(table)

	logger.Info("loaded inputs",
		"values", len(overlay),
		"points", len(table),
		"duration", result.Stats.LoadTime)

	if len(overlay) != len(table) {
		return nil, errors.New(errors.ErrCodeSizeMismatch,
			"overlay has %d values but projection has %d points", len(overlay), len(table))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Render
	exportStart := time.Now()
	key := r.Keyer.ImageKey(cache.Hash(overlayData), tableHash, opts.ImageKeyOpts())
	img, hit := r.cacheGet(ctx, "image", key, opts.Refresh)
	if !hit {
		img, err = projection.Render(overlay, table, projection.RenderOptions{
			Width:      vg.Length(opts.Width) * vg.Inch,
			Height:     vg.Length(opts.Height) * vg.Inch,
			Format:     opts.ImageFormat,
			Colormap:   opts.Colormap,
			PointScale: opts.PointScale,
		})
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		if !opts.Refresh {
			r.cacheSet(ctx, "image", key, img, cache.TTLImage, logger)
		}
	}
	result.CacheInfo.ArtifactHit = hit

	if err := writeArtifact(ctx, opts.ImageFormat, result.ImagePath, img); err != nil {
		return nil, err
	}
	result.Hash = cache.Hash(img)
	result.Stats.ExportTime = time.Since(exportStart)

	logger.Info("rendered projection",
		"path", result.ImagePath,
		"cached", hit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// ProjectSphere computes the Mollweide projection table of the sphere
// surface at path. It returns the table, a content hash of its encoding and
// whether it came from the cache.
func (r *Runner) ProjectSphere(ctx context.Context, path string, refresh bool) (plotter.XYs, string, bool, error) {
	data, sphere, err := loadSurface(ctx, "sphere", path)
	if err != nil {
		return nil, "", false, err
	}

	key := r.Keyer.TableKey(cache.Hash(data))
	if cached, hit := r.cacheGet(ctx, "table", key, refresh); hit {
		if table, err := projection.ReadTable(bytes.NewReader(cached)); err == nil {
			return table, cache.Hash(cached), true, nil
		}
		// Unreadable entries fall through to recompute.
	}

	table := projection.Project(sphere)
	var buf bytes.Buffer
	if err := projection.WriteTable(&buf, table); err != nil {
		return nil, "", false, err
	}
	if !refresh {
		r.cacheSet(ctx, "table", key, buf.Bytes(), cache.TTLTable, r.Logger)
	}
	return table, cache.Hash(buf.Bytes()), false, nil
}

// RenderHemispheres runs RenderProjection for each option set concurrently.
// Runs must write distinct files. Results are returned in input order.
func (r *Runner) RenderHemispheres(ctx context.Context, runs []Options) ([]*ProjectionResult, error) {
	for i := range runs {
		if err := runs[i].ValidateForProjection(); err != nil {
			return nil, fmt.Errorf("run %d: invalid options: %w", i, err)
		}
	}
	if err := checkDistinctOutputs(runs, imageExts); err != nil {
		return nil, err
	}

	results := make([]*ProjectionResult, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	for i, opts := range runs {
		g.Go(func() error {
			res, err := r.RenderProjection(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", opts.BaseName(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadTable reads a projection table file and hashes its content.
func loadTable(ctx context.Context, path string) (plotter.XYs, string, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, "table", path)

	table, err := projection.LoadTable(path)
	hash := ""
	if err == nil {
		var buf bytes.Buffer
		if err = projection.WriteTable(&buf, table); err == nil {
			hash = cache.Hash(buf.Bytes())
		}
	}

	observability.Pipeline().OnLoadComplete(ctx, "table", path, len(table), time.Since(start), err)
	return table, hash, err
}
