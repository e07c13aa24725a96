package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/qmuntal/gltf"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/plotter"

	"github.com/matzehuels/surfviz/pkg/cache"
	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/freesurfer"
	"github.com/matzehuels/surfviz/pkg/mesh"
	"github.com/matzehuels/surfviz/pkg/observability"
	"github.com/matzehuels/surfviz/pkg/ply"
	"github.com/matzehuels/surfviz/pkg/projection"
)

// =============================================================================
// Fixtures
// =============================================================================

func writeSurface(t *testing.T, path string, m *mesh.Mesh) {
	t.Helper()
	var buf bytes.Buffer
	if err := freesurfer.WriteGeometry(&buf, m, "test"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeOverlay(t *testing.T, path string, values []float64) {
	t.Helper()
	var buf bytes.Buffer
	if err := freesurfer.WriteMGH(&buf, values); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func triangle() *mesh.Mesh {
	return mesh.New(
		[]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9.5}},
		[]mesh.Face{{0, 1, 2}},
	)
}

// octahedron is a unit sphere stand-in with six vertices.
func octahedron() *mesh.Mesh {
	return mesh.New(
		[]r3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}},
		[]mesh.Face{{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4}, {2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5}},
	)
}

// meshInputs writes an overlay and surface for hemisphere hemi into dir.
func meshInputs(t *testing.T, dir, hemi string, values []float64, m *mesh.Mesh) Options {
	t.Helper()
	overlay := filepath.Join(dir, hemi+".thickness.fwhm10.fsaverage.mgh")
	surface := filepath.Join(dir, hemi+".pial")
	writeOverlay(t, overlay, values)
	writeSurface(t, surface, m)
	return Options{Overlay: overlay, Surface: surface, OutputDir: filepath.Join(dir, "out")}
}

// =============================================================================
// Options
// =============================================================================

func TestValidateSceneFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"gltf", false},
		{"glb", false},
		{"ply", true},
		{"GLTF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateSceneFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSceneFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateForMesh(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"ok", Options{Overlay: "lh.thickness.mgh", Surface: "lh.pial"}, ""},
		{"no overlay", Options{Surface: "lh.pial"}, errors.ErrCodeInvalidInput},
		{"no surface", Options{Overlay: "lh.thickness.mgh"}, errors.ErrCodeInvalidInput},
		{"scene format", Options{Overlay: "a.mgh", Surface: "b", SceneFormat: "obj"}, errors.ErrCodeInvalidFormat},
		{"colormap", Options{Overlay: "a.mgh", Surface: "b", Colormap: "jet"}, errors.ErrCodeInvalidColormap},
		{"hemisphere", Options{Overlay: "a.mgh", Surface: "b", Hemisphere: "both"}, errors.ErrCodeInvalidHemisphere},
		{"measure", Options{Overlay: "a.mgh", Surface: "b", Measure: "myelin"}, errors.ErrCodeInvalidMeasure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForMesh()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ValidateForMesh: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForMesh error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestValidateForMeshDefaults(t *testing.T) {
	opts := Options{Overlay: "/data/lh.thickness.fwhm10.fsaverage.mgh", Surface: "lh.pial"}
	if err := opts.ValidateForMesh(); err != nil {
		t.Fatal(err)
	}
	// Idempotent
	if err := opts.ValidateForMesh(); err != nil {
		t.Fatal(err)
	}

	if opts.SceneFormat != FormatGLTF || opts.Colormap != "hot" || opts.OutputDir != "." {
		t.Errorf("defaults = %q %q %q", opts.SceneFormat, opts.Colormap, opts.OutputDir)
	}
	if opts.Hemisphere != "lh" {
		t.Errorf("Hemisphere = %q, want lh", opts.Hemisphere)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if got := opts.OutputPath(FormatPLY); got != "lh.thickness.fwhm10.fsaverage.ply" {
		t.Errorf("OutputPath(ply) = %q", got)
	}
}

func TestValidateForProjectionDefaults(t *testing.T) {
	opts := Options{Overlay: "rh.area.mgz"}
	if err := opts.ValidateForProjection(); err != nil {
		t.Fatal(err)
	}
	if opts.ProjectionTable != projection.DefaultTable {
		t.Errorf("ProjectionTable = %q", opts.ProjectionTable)
	}
	if opts.ImageFormat != "png" || opts.Width != DefaultWidth || opts.PointScale != DefaultPointScale {
		t.Errorf("defaults = %q %v %v", opts.ImageFormat, opts.Width, opts.PointScale)
	}
	if got := opts.OutputPath(opts.ImageFormat); got != "rh.area.png" {
		t.Errorf("OutputPath = %q", got)
	}

	withSphere := Options{Overlay: "rh.area.mgz", Sphere: "rh.sphere"}
	if err := withSphere.ValidateForProjection(); err != nil {
		t.Fatal(err)
	}
	if withSphere.ProjectionTable != "" {
		t.Errorf("table defaulted despite sphere: %q", withSphere.ProjectionTable)
	}

	bad := Options{Overlay: "rh.area.mgz", ImageFormat: "bmp"}
	if err := bad.ValidateForProjection(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestOptionsName(t *testing.T) {
	opts := Options{Overlay: "x/lh.sulc", Name: "left", OutputDir: "out"}
	if got := opts.OutputPath("gltf"); got != filepath.Join("out", "left.gltf") {
		t.Errorf("OutputPath = %q", got)
	}
}

// =============================================================================
// Mesh pipeline
// =============================================================================

func TestConvertMesh(t *testing.T) {
	dir := t.TempDir()
	opts := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())

	runner := NewRunner(nil, nil, nil)
	res, err := runner.ConvertMesh(context.Background(), opts)
	if err != nil {
		t.Fatalf("ConvertMesh: %v", err)
	}

	wantScene := filepath.Join(dir, "out", "lh.thickness.fwhm10.fsaverage.gltf")
	if res.ScenePath != wantScene {
		t.Errorf("ScenePath = %q, want %q", res.ScenePath, wantScene)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Stats.VertexCount != 3 || res.Stats.FaceCount != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}

	data, err := os.ReadFile(res.PLYPath)
	if err != nil {
		t.Fatalf("read ply: %v", err)
	}
	text := string(data)
	for _, want := range []string{"element vertex 3\n", "element face 1\n", "\n3 0 1 2\n", "comment measure thickness\n", "comment fwhm 10\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("ply lacks %q", want)
		}
	}

	model, err := ply.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ply.Read: %v", err)
	}
	c := model.Mesh.Centroid()
	if math.Abs(c.X)+math.Abs(c.Y)+math.Abs(c.Z) > 1e-5 {
		t.Errorf("written mesh centroid = %v, want origin", c)
	}
	if model.Colors[0].R != 10 || model.Colors[2] != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("colors = %v", model.Colors)
	}

	sceneFile, err := os.Open(res.ScenePath)
	if err != nil {
		t.Fatal(err)
	}
	defer sceneFile.Close()
	var doc gltf.Document
	if err := gltf.NewDecoder(sceneFile).Decode(&doc); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	prim := doc.Meshes[0].Primitives[0]
	if n := doc.Accessors[prim.Attributes[gltf.POSITION]].Count; n != 3 {
		t.Errorf("scene has %d positions, want 3", n)
	}

	if res.Hashes[FormatPLY] != cache.Hash(data) {
		t.Error("ply hash does not match file content")
	}
}

func TestConvertMeshGLBAndRemoveIntermediate(t *testing.T) {
	dir := t.TempDir()
	opts := meshInputs(t, dir, "rh", []float64{3, 1, 2}, triangle())
	opts.SceneFormat = FormatGLB
	opts.RemoveIntermediate = true

	res, err := NewRunner(nil, nil, nil).ConvertMesh(context.Background(), opts)
	if err != nil {
		t.Fatalf("ConvertMesh: %v", err)
	}
	if res.PLYPath != "" {
		t.Errorf("PLYPath = %q, want empty", res.PLYPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "rh.thickness.fwhm10.fsaverage.ply")); !os.IsNotExist(err) {
		t.Error("intermediate file was not removed")
	}
	data, err := os.ReadFile(res.ScenePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("glTF")) || filepath.Ext(res.ScenePath) != ".glb" {
		t.Errorf("scene %s is not a GLB file", res.ScenePath)
	}
}

func TestConvertMeshErrors(t *testing.T) {
	dir := t.TempDir()

	mismatch := meshInputs(t, dir, "lh", []float64{0, 1}, triangle())

	broken := meshInputs(t, dir, "rh", []float64{0, 1, 2}, &mesh.Mesh{
		Vertices: triangle().Vertices,
		Faces:    []mesh.Face{{0, 1, 3}},
	})

	missing := Options{Overlay: mismatch.Overlay, Surface: filepath.Join(dir, "lh.white"), OutputDir: dir}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"size mismatch", mismatch, errors.ErrCodeSizeMismatch},
		{"bad face", broken, errors.ErrCodeInvalidMesh},
		{"missing surface", missing, errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).ConvertMesh(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if _, err := os.Stat(tt.opts.OutputPath(FormatPLY)); !os.IsNotExist(err) {
				t.Error("failed run left an intermediate file")
			}
		})
	}
}

func TestConvertMeshCached(t *testing.T) {
	dir := t.TempDir()
	opts := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	first, err := runner.ConvertMesh(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ArtifactHit {
		t.Error("first run reported a cache hit")
	}
	if err := os.Remove(first.ScenePath); err != nil {
		t.Fatal(err)
	}

	second, err := runner.ConvertMesh(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("second run missed the cache")
	}
	if diff := cmp.Diff(first.Hashes, second.Hashes); diff != "" {
		t.Errorf("hashes differ (-first +second):\n%s", diff)
	}
	if _, err := os.Stat(second.ScenePath); err != nil {
		t.Errorf("cached scene not restored: %v", err)
	}

	opts.Refresh = true
	third, err := runner.ConvertMesh(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ArtifactHit {
		t.Error("refresh run used the cache")
	}
}

func TestConvertMeshCacheKeepsNames(t *testing.T) {
	dir := t.TempDir()
	lh := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())
	rh := meshInputs(t, dir, "rh", []float64{0, 1, 2}, triangle())

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	if _, err := runner.ConvertMesh(context.Background(), lh); err != nil {
		t.Fatal(err)
	}
	res, err := runner.ConvertMesh(context.Background(), rh)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.ArtifactHit {
		t.Error("identical content under another name hit the cache")
	}

	ply, err := os.ReadFile(res.PLYPath)
	if err != nil {
		t.Fatal(err)
	}
	scene, err := os.ReadFile(res.ScenePath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(ply), "lh.") || !strings.Contains(string(ply), "comment hemisphere rh\n") {
		t.Errorf("ply header carries the wrong names:\n%s", ply)
	}
	if strings.Contains(string(scene), "lh.") {
		t.Error("scene carries the lh name")
	}

	rh.Name = "right"
	named, err := runner.ConvertMesh(context.Background(), rh)
	if err != nil {
		t.Fatal(err)
	}
	if named.CacheInfo.ArtifactHit {
		t.Error("--name change hit the cache")
	}
}

func TestConvertMeshCancelled(t *testing.T) {
	dir := t.TempDir()
	opts := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, nil).ConvertMesh(ctx, opts); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestConvertHemispheres(t *testing.T) {
	dir := t.TempDir()
	lh := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())
	rh := meshInputs(t, dir, "rh", []float64{0, 1, 2, 3, 4, 5}, octahedron())

	results, err := NewRunner(nil, nil, nil).ConvertHemispheres(context.Background(), []Options{lh, rh})
	if err != nil {
		t.Fatalf("ConvertHemispheres: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Stats.VertexCount != 3 || results[1].Stats.VertexCount != 6 {
		t.Errorf("results out of order: %d, %d vertices", results[0].Stats.VertexCount, results[1].Stats.VertexCount)
	}
	if results[0].ScenePath == results[1].ScenePath {
		t.Error("hemispheres share an output path")
	}

	// Same overlay twice would write the same files.
	if _, err := NewRunner(nil, nil, nil).ConvertHemispheres(context.Background(), []Options{lh, lh}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate outputs error = %v, want INVALID_INPUT", err)
	}
}

func TestConvertHemispheresFailure(t *testing.T) {
	dir := t.TempDir()
	lh := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())
	rh := meshInputs(t, dir, "rh", []float64{0, 1}, triangle())

	_, err := NewRunner(nil, nil, nil).ConvertHemispheres(context.Background(), []Options{lh, rh})
	if !errors.Is(err, errors.ErrCodeSizeMismatch) {
		t.Fatalf("error = %v, want SIZE_MISMATCH", err)
	}
	if !strings.Contains(err.Error(), "rh.thickness") {
		t.Errorf("error %q does not name the failing run", err)
	}
}

// =============================================================================
// Projection pipeline
// =============================================================================

func writeTable(t *testing.T, path string, xys plotter.XYs) {
	t.Helper()
	var buf bytes.Buffer
	if err := projection.WriteTable(&buf, xys); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRenderProjection(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "lh.thickness.mgh")
	table := filepath.Join(dir, "projected.csv")
	writeOverlay(t, overlay, []float64{1, 2, 3})
	writeTable(t, table, plotter.XYs{{X: -1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}})

	res, err := NewRunner(nil, nil, nil).RenderProjection(context.Background(), Options{
		Overlay:         overlay,
		ProjectionTable: table,
		OutputDir:       dir,
	})
	if err != nil {
		t.Fatalf("RenderProjection: %v", err)
	}
	if want := filepath.Join(dir, "lh.thickness.png"); res.ImagePath != want {
		t.Errorf("ImagePath = %q, want %q", res.ImagePath, want)
	}
	if res.TablePath != table {
		t.Errorf("TablePath = %q", res.TablePath)
	}
	data, err := os.ReadFile(res.ImagePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
	if res.Hash != cache.Hash(data) {
		t.Error("hash does not match file content")
	}
}

func TestRenderProjectionFromSphere(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "rh.sulc.mgh")
	sphere := filepath.Join(dir, "rh.sphere")
	writeOverlay(t, overlay, []float64{-1, 0, 1, 2, 3, 4})
	writeSurface(t, sphere, octahedron())

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := Options{Overlay: overlay, Sphere: sphere, OutputDir: dir, ImageFormat: "svg"}

	first, err := runner.RenderProjection(context.Background(), opts)
	if err != nil {
		t.Fatalf("RenderProjection: %v", err)
	}
	if first.TablePath != "" || first.CacheInfo.TableHit {
		t.Errorf("first run: table path %q, hit %v", first.TablePath, first.CacheInfo.TableHit)
	}
	if filepath.Ext(first.ImagePath) != ".svg" {
		t.Errorf("ImagePath = %q", first.ImagePath)
	}

	second, err := runner.RenderProjection(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.TableHit || !second.CacheInfo.ArtifactHit {
		t.Errorf("second run cache info = %+v, want hits", second.CacheInfo)
	}
	if first.Hash != second.Hash {
		t.Error("cached image differs from rendered one")
	}
}

func TestRenderProjectionErrors(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "lh.thickness.mgh")
	writeOverlay(t, overlay, []float64{1, 2, 3})
	short := filepath.Join(dir, "short.csv")
	writeTable(t, short, plotter.XYs{{X: 0, Y: 0}})

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing table", Options{Overlay: overlay, ProjectionTable: filepath.Join(dir, "projected.csv")}, errors.ErrCodeMissingProjection},
		{"length mismatch", Options{Overlay: overlay, ProjectionTable: short}, errors.ErrCodeSizeMismatch},
		{"missing overlay", Options{Overlay: filepath.Join(dir, "rh.x.mgh"), ProjectionTable: short}, errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.OutputDir = dir
			_, err := NewRunner(nil, nil, nil).RenderProjection(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderHemispheres(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "projected.csv")
	writeTable(t, table, plotter.XYs{{X: -1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}})

	var runs []Options
	for _, hemi := range []string{"lh", "rh"} {
		overlay := filepath.Join(dir, hemi+".area.mgh")
		writeOverlay(t, overlay, []float64{1, 2, 3})
		runs = append(runs, Options{Overlay: overlay, ProjectionTable: table, OutputDir: dir})
	}

	results, err := NewRunner(nil, nil, nil).RenderHemispheres(context.Background(), runs)
	if err != nil {
		t.Fatalf("RenderHemispheres: %v", err)
	}
	for i, hemi := range []string{"lh", "rh"} {
		if want := filepath.Join(dir, hemi+".area.png"); results[i].ImagePath != want {
			t.Errorf("result %d = %q, want %q", i, results[i].ImagePath, want)
		}
	}
}

// =============================================================================
// Config
// =============================================================================

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := `
output_dir = "out"
cache = true

[mesh]
scene_format = "glb"

[projection]
image_format = "svg"
width = 8.0
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled = false")
	}

	opts := Options{Colormap: "kindlmann", Height: 3}
	cfg.Apply(&opts)
	want := Options{
		OutputDir:   "out",
		Colormap:    "kindlmann",
		SceneFormat: "glb",
		ImageFormat: "svg",
		Width:       8,
		Height:      3,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("colour = \"hot\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), "colour") {
		t.Errorf("error = %v, want unknown key colour", err)
	}
}

func TestNilConfig(t *testing.T) {
	var cfg *Config
	opts := Options{Colormap: "hot"}
	cfg.Apply(&opts)
	if opts.Colormap != "hot" || cfg.CacheEnabled() {
		t.Error("nil config changed options")
	}
}

// =============================================================================
// Hooks
// =============================================================================

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	loads   []string
	exports []string
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, kind, _ string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, kind)
}

func (h *recordingHooks) OnExportComplete(_ context.Context, format, _ string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exports = append(h.exports, format)
}

func TestConvertMeshHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	opts := meshInputs(t, dir, "lh", []float64{0, 1, 2}, triangle())
	if _, err := NewRunner(nil, nil, nil).ConvertMesh(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"overlay", "surface"}, hooks.loads); diff != "" {
		t.Errorf("loads mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ply", "gltf"}, hooks.exports); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
}
