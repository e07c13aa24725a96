package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/surfviz/pkg/cache"
	"github.com/matzehuels/surfviz/pkg/colormap"
	"github.com/matzehuels/surfviz/pkg/freesurfer"
	"github.com/matzehuels/surfviz/pkg/mesh"
	"github.com/matzehuels/surfviz/pkg/observability"
	"github.com/matzehuels/surfviz/pkg/ply"
	"github.com/matzehuels/surfviz/pkg/scene"
)

// ConvertMesh paints the overlay onto the surface and exports it:
//
//  1. load the overlay and the surface
//  2. check that the overlay has one value per vertex
//  3. convert faces to 0-based numbering and validate them
//  4. translate the mesh so its centroid is at the origin
//  5. map normalized overlay values through the colormap
//  6. write <base>.ply
//  7. read <base>.ply back and export it as <base>.gltf (or .glb)
//
// The returned result names the exported scene.
func (r *Runner) ConvertMesh(ctx context.Context, opts Options) (*MeshResult, error) {
	if err := opts.ValidateForMesh(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	logger := opts.Logger.With("run", opts.BaseName())

	result := &MeshResult{
		RunID:     newRunID(),
		PLYPath:   opts.OutputPath(FormatPLY),
		ScenePath: opts.OutputPath(opts.SceneFormat),
		Hashes:    make(map[string]string),
	}

	// Stage 1: Load
	loadStart := time.Now()
	overlayData, overlay, err := loadOverlay(ctx, opts.Overlay)
	if err != nil {
		return nil, fmt.Errorf("load overlay: %w", err)
	}
	surfaceData, m, err := loadSurface(ctx, "surface", opts.Surface)
	if err != nil {
		return nil, fmt.Errorf("load surface: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.VertexCount = m.VertexCount()
	result.Stats.FaceCount = m.FaceCount()

	logger.Info("loaded inputs",
		"values", len(overlay),
		"vertices", m.VertexCount(),
		"faces", m.FaceCount(),
		"duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cached artifacts are keyed by input content and by the names they
	// embed, so a moved input still hits but a renamed one does not.
	overlayHash, surfaceHash := cache.Hash(overlayData), cache.Hash(surfaceData)
	plyKey := r.Keyer.MeshKey(overlayHash, surfaceHash, opts.MeshKeyOpts(FormatPLY))
	sceneKey := r.Keyer.MeshKey(overlayHash, surfaceHash, opts.MeshKeyOpts(opts.SceneFormat))

	exportStart := time.Now()
	plyData, plyHit := r.cacheGet(ctx, "mesh", plyKey, opts.Refresh)
	sceneData, sceneHit := r.cacheGet(ctx, "mesh", sceneKey, opts.Refresh)
	if plyHit && sceneHit {
		result.CacheInfo.ArtifactHit = true
		if err := r.writeMeshArtifacts(ctx, opts, result, plyData, sceneData); err != nil {
			return nil, err
		}
		result.Stats.ExportTime = time.Since(exportStart)
		logger.Info("restored cached mesh", "scene", result.ScenePath)
		return result, nil
	}

	// Stage 2: Prepare geometry and colors
	if err := m.ValidateOverlay(len(overlay)); err != nil {
		return nil, err
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	offset := m.Center()
	logger.Debug("centered mesh", "offset", fmt.Sprintf("(%.3f, %.3f, %.3f)", offset.X, offset.Y, offset.Z))

	cm, err := colormap.Lookup(opts.Colormap)
	if err != nil {
		return nil, err
	}
	colors, err := colormap.Colorize(overlay, cm)
	if err != nil {
		return nil, fmt.Errorf("colorize: %w", err)
	}
	if lo, hi, ok := colormap.Range(overlay); ok {
		logger.Debug("colorized overlay", "colormap", opts.Colormap, "min", lo, "max", hi)
	}

	// Stage 3: Export the intermediate file, then the scene from what was
	// written.
	var buf bytes.Buffer
	if err := ply.Write(&buf, m, colors, opts.comments()...); err != nil {
		return nil, fmt.Errorf("encode ply: %w", err)
	}
	plyData = buf.Bytes()
	if err := writeArtifact(ctx, FormatPLY, result.PLYPath, plyData); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sceneData, err = exportScene(ctx, result.PLYPath, opts)
	if err != nil {
		return nil, fmt.Errorf("export scene: %w", err)
	}
	if err := writeArtifact(ctx, opts.SceneFormat, result.ScenePath, sceneData); err != nil {
		return nil, err
	}

	result.Hashes[FormatPLY] = cache.Hash(plyData)
	result.Hashes[opts.SceneFormat] = cache.Hash(sceneData)
	result.Stats.ExportTime = time.Since(exportStart)

	if !opts.Refresh {
		r.cacheSet(ctx, "mesh", plyKey, plyData, cache.TTLMesh, logger)
		r.cacheSet(ctx, "mesh", sceneKey, sceneData, cache.TTLMesh, logger)
	}

	if opts.RemoveIntermediate {
		if err := os.Remove(result.PLYPath); err != nil {
			logger.Warn("could not remove intermediate file", "path", result.PLYPath, "err", err)
		} else {
			result.PLYPath = ""
		}
	}

	logger.Info("exported scene",
		"path", result.ScenePath,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// writeMeshArtifacts writes cached artifacts to their output paths.
func (r *Runner) writeMeshArtifacts(ctx context.Context, opts Options, result *MeshResult, plyData, sceneData []byte) error {
	if !opts.RemoveIntermediate {
		if err := writeArtifact(ctx, FormatPLY, result.PLYPath, plyData); err != nil {
			return err
		}
		result.Hashes[FormatPLY] = cache.Hash(plyData)
	} else {
		result.PLYPath = ""
	}
	if err := writeArtifact(ctx, opts.SceneFormat, result.ScenePath, sceneData); err != nil {
		return err
	}
	result.Hashes[opts.SceneFormat] = cache.Hash(sceneData)
	return nil
}

// exportScene reads the PLY file at path and encodes it as a scene.
func exportScene(ctx context.Context, path string, opts Options) ([]byte, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	model, err := ply.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := scene.Build(model, opts.BaseName())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scene.Encode(&buf, doc, opts.SceneFormat == FormatGLB); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertHemispheres runs ConvertMesh for each option set concurrently.
// Runs must write distinct files. The first failure cancels the others.
// Results are returned in input order.
func (r *Runner) ConvertHemispheres(ctx context.Context, runs []Options) ([]*MeshResult, error) {
	for i := range runs {
		if err := runs[i].ValidateForMesh(); err != nil {
			return nil, fmt.Errorf("run %d: invalid options: %w", i, err)
		}
	}
	if err := checkDistinctOutputs(runs, sceneExts); err != nil {
		return nil, err
	}

	results := make([]*MeshResult, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	for i, opts := range runs {
		g.Go(func() error {
			res, err := r.ConvertMesh(ctx, opts)
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

// loadOverlay reads and decodes an overlay, returning the raw bytes for
// hashing.
func loadOverlay(ctx context.Context, path string) ([]byte, []float64, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, "overlay", path)

	data, err := readInput(path)
	var values []float64
	if err == nil {
		values, err = freesurfer.ReadOverlay(bytes.NewReader(data), path)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}
	}

	observability.Pipeline().OnLoadComplete(ctx, "overlay", path, len(values), time.Since(start), err)
	return data, values, err
}

// loadSurface reads and decodes a FreeSurfer surface.
func loadSurface(ctx context.Context, kind, path string) ([]byte, *mesh.Mesh, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, kind, path)

	data, err := readInput(path)
	var m *mesh.Mesh
	if err == nil {
		m, err = freesurfer.ReadGeometry(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}
	}

	count := 0
	if m != nil {
		count = m.VertexCount()
	}
	observability.Pipeline().OnLoadComplete(ctx, kind, path, count, time.Since(start), err)
	return data, m, err
}
