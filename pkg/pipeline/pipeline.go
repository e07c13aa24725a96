// Package pipeline runs the surfviz conversions end to end.
//
// Two independent pipelines are provided, each run once per hemisphere:
//
//  1. Mesh: overlay + surface → colorized PLY (intermediate) → glTF scene
//  2. Projection: overlay + Mollweide projection table → raster image
//
// Both are used by the CLI and can be embedded directly. Inputs are read
// from the paths in [Options]; artifacts are written to Options.OutputDir
// and named after the overlay file.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.ConvertMesh(ctx, pipeline.Options{
//	    Overlay: "lh.thickness.fwhm10.fsaverage.mgh",
//	    Surface: "lh.pial",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.ScenePath) // lh.thickness.fwhm10.fsaverage.gltf
//
// Hemispheres are independent units of work and can be run concurrently:
//
//	results, err := runner.ConvertHemispheres(ctx, []pipeline.Options{lh, rh})
package pipeline

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/surfviz/pkg/cache"
	"github.com/matzehuels/surfviz/pkg/colormap"
	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/freesurfer"
	"github.com/matzehuels/surfviz/pkg/projection"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSceneFormat is the scene export format.
	DefaultSceneFormat = FormatGLTF

	// DefaultImageFormat is the projection image format.
	DefaultImageFormat = "png"

	// DefaultWidth and DefaultHeight are the image size in inches.
	DefaultWidth  = 6.4
	DefaultHeight = 4.8

	// DefaultPointScale maps an overlay value v to a marker of v square points.
	DefaultPointScale = 1.0
)

// Scene formats.
const (
	FormatPLY  = "ply"
	FormatGLTF = "gltf"
	FormatGLB  = "glb"
)

// ValidSceneFormats is the set of supported scene export formats.
var ValidSceneFormats = map[string]bool{
	FormatGLTF: true,
	FormatGLB:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Inputs
	Overlay         string `json:"overlay"`
	Surface         string `json:"surface,omitempty"`
	Sphere          string `json:"sphere,omitempty"`
	ProjectionTable string `json:"projection_table,omitempty"`

	// Metadata recorded in exported files. Empty values are inferred from
	// the overlay file name; an explicit Measure must be a known statistic.
	Hemisphere string `json:"hemisphere,omitempty"`
	Measure    string `json:"measure,omitempty"`

	// Output
	OutputDir          string `json:"output_dir,omitempty"`
	Name               string `json:"name,omitempty"` // overrides the overlay-derived base name
	Colormap           string `json:"colormap,omitempty"`
	SceneFormat        string `json:"scene_format,omitempty"`
	RemoveIntermediate bool   `json:"remove_intermediate,omitempty"`

	// Projection image
	ImageFormat string  `json:"image_format,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	PointScale  float64 `json:"point_scale,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// MeshResult contains the outputs of a mesh conversion.
type MeshResult struct {
	RunID string

	// PLYPath is the intermediate file; empty when it was removed.
	PLYPath string

	// ScenePath is the exported scene.
	ScenePath string

	// Hashes maps each written artifact format to its content hash.
	Hashes map[string]string

	Stats     Stats
	CacheInfo CacheInfo
}

// ProjectionResult contains the outputs of a projection render.
type ProjectionResult struct {
	RunID     string
	ImagePath string

	// TablePath is where the projection table was read from; empty when it
	// was computed from a sphere surface.
	TablePath string

	Hash      string
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	FaceCount   int
	LoadTime    time.Duration
	ExportTime  time.Duration
}

// CacheInfo tracks which artifacts came from the cache.
type CacheInfo struct {
	TableHit    bool
	ArtifactHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateSceneFormat checks that a scene format is valid.
func ValidateSceneFormat(format string) error {
	if !ValidSceneFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid scene format: %q (must be one of: gltf, glb)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForMesh checks required fields for a mesh conversion and applies
// defaults. It is idempotent.
func (o *Options) ValidateForMesh() error {
	if err := o.validateOverlay(); err != nil {
		return err
	}
	if err := errors.ValidatePath(o.Surface); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "surface")
	}
	o.SetMeshDefaults()
	if err := ValidateSceneFormat(o.SceneFormat); err != nil {
		return err
	}
	if _, err := colormap.Lookup(o.Colormap); err != nil {
		return err
	}
	return nil
}

// ValidateForProjection checks required fields for a projection render and
// applies defaults. It is idempotent.
func (o *Options) ValidateForProjection() error {
	if err := o.validateOverlay(); err != nil {
		return err
	}
	if o.Sphere != "" {
		if err := errors.ValidatePath(o.Sphere); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "sphere")
		}
	}
	o.SetProjectionDefaults()
	if err := projection.ValidateFormat(o.ImageFormat); err != nil {
		return err
	}
	if _, err := colormap.Lookup(o.Colormap); err != nil {
		return err
	}
	return nil
}

func (o *Options) validateOverlay() error {
	if err := errors.ValidatePath(o.Overlay); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "overlay")
	}
	info := freesurfer.ParseOverlayName(o.Overlay)
	if o.Hemisphere == "" {
		o.Hemisphere = info.Hemisphere
	}
	if err := errors.ValidateHemisphere(o.Hemisphere); err != nil {
		return err
	}
	if o.Measure != "" {
		return errors.ValidateMeasure(o.Measure)
	}
	return nil
}

func (o *Options) setCommonDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Colormap == "" {
		o.Colormap = colormap.Default
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetMeshDefaults sets default values for mesh conversion.
func (o *Options) SetMeshDefaults() {
	o.setCommonDefaults()
	if o.SceneFormat == "" {
		o.SceneFormat = DefaultSceneFormat
	}
}

// SetProjectionDefaults sets default values for projection rendering.
func (o *Options) SetProjectionDefaults() {
	o.setCommonDefaults()
	if o.ProjectionTable == "" && o.Sphere == "" {
		o.ProjectionTable = projection.DefaultTable
	}
	if o.ImageFormat == "" {
		o.ImageFormat = DefaultImageFormat
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.PointScale <= 0 {
		o.PointScale = DefaultPointScale
	}
}

// BaseName returns the file name stem shared by all artifacts of this run.
func (o *Options) BaseName() string {
	if o.Name != "" {
		return o.Name
	}
	return freesurfer.OutputBase(o.Overlay)
}

// OutputPath returns where the artifact with the given extension is written.
func (o *Options) OutputPath(ext string) string {
	return filepath.Join(o.OutputDir, o.BaseName()+"."+ext)
}

// MeshKeyOpts returns cache key options for a mesh artifact.
func (o *Options) MeshKeyOpts(format string) cache.MeshKeyOpts {
	return cache.MeshKeyOpts{
		Format:   format,
		Colormap: o.Colormap,
		Name:     o.BaseName(),
		Comments: o.comments(),
	}
}

// ImageKeyOpts returns cache key options for a projection image.
func (o *Options) ImageKeyOpts() cache.ImageKeyOpts {
	return cache.ImageKeyOpts{
		Format:     o.ImageFormat,
		Colormap:   o.Colormap,
		Width:      o.Width,
		Height:     o.Height,
		PointScale: o.PointScale,
	}
}

// comments returns the PLY header comments describing this run.
func (o *Options) comments() []string {
	out := []string{"overlay " + filepath.Base(o.Overlay)}
	if o.Hemisphere != "" {
		out = append(out, "hemisphere "+o.Hemisphere)
	}
	info := freesurfer.ParseOverlayName(o.Overlay)
	if m := cmp.Or(o.Measure, info.Measure); m != "" {
		out = append(out, "measure "+m)
	}
	if info.FWHM >= 0 {
		out = append(out, fmt.Sprintf("fwhm %d", info.FWHM))
	}
	if info.Template != "" {
		out = append(out, "template "+info.Template)
	}
	out = append(out, "colormap "+o.Colormap)
	return out
}

// checkDistinctOutputs reports an error when two runs would write the same
// artifact.
func checkDistinctOutputs(opts []Options, ext func(Options) []string) error {
	seen := map[string]int{}
	for i, o := range opts {
		for _, e := range ext(o) {
			p := filepath.Clean(o.OutputPath(e))
			if j, ok := seen[p]; ok {
				return errors.New(errors.ErrCodeInvalidInput, "runs %d and %d both write %s", j, i, p)
			}
			seen[p] = i
		}
	}
	return nil
}

func sceneExts(o Options) []string {
	return slices.Compact([]string{FormatPLY, o.SceneFormat})
}

func imageExts(o Options) []string {
	return []string{o.ImageFormat}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d vertices, %d faces, load %s, export %s",
		s.VertexCount, s.FaceCount, s.LoadTime.Round(time.Millisecond), s.ExportTime.Round(time.Millisecond))
}
