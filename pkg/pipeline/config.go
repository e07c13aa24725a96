package pipeline

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// Config is the on-disk TOML configuration. Every field is optional; unset
// fields leave the corresponding option untouched.
//
//	output_dir = "out"
//	colormap   = "hot"
//	cache      = true
//
//	[mesh]
//	scene_format        = "glb"
//	remove_intermediate = true
//
//	[projection]
//	table        = "projected.csv"
//	image_format = "svg"
//	width        = 8.0
//	height       = 4.0
//	point_scale  = 2.5
type Config struct {
	OutputDir *string `toml:"output_dir"`
	Colormap  *string `toml:"colormap"`
	Cache     *bool   `toml:"cache"`

	Mesh       MeshConfig       `toml:"mesh"`
	Projection ProjectionConfig `toml:"projection"`
}

// MeshConfig holds mesh conversion settings.
type MeshConfig struct {
	SceneFormat        *string `toml:"scene_format"`
	RemoveIntermediate *bool   `toml:"remove_intermediate"`
}

// ProjectionConfig holds projection rendering settings.
type ProjectionConfig struct {
	Table       *string  `toml:"table"`
	Sphere      *string  `toml:"sphere"`
	ImageFormat *string  `toml:"image_format"`
	Width       *float64 `toml:"width"`
	Height      *float64 `toml:"height"`
	PointScale  *float64 `toml:"point_scale"`
}

// LoadConfig reads a TOML configuration file. Unknown keys are rejected so
// that typos do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return &cfg, nil
}

// CacheEnabled reports whether the config turns on the artifact cache.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.Cache != nil && *c.Cache
}

// Apply copies every set field onto opts.
func (c *Config) Apply(opts *Options) {
	if c == nil {
		return
	}
	set(&opts.OutputDir, c.OutputDir)
	set(&opts.Colormap, c.Colormap)

	set(&opts.SceneFormat, c.Mesh.SceneFormat)
	set(&opts.RemoveIntermediate, c.Mesh.RemoveIntermediate)

	set(&opts.ProjectionTable, c.Projection.Table)
	set(&opts.Sphere, c.Projection.Sphere)
	set(&opts.ImageFormat, c.Projection.ImageFormat)
	set(&opts.Width, c.Projection.Width)
	set(&opts.Height, c.Projection.Height)
	set(&opts.PointScale, c.Projection.PointScale)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
