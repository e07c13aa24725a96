// Package cache stores conversion artifacts keyed by the content of their
// inputs, so that re-running a conversion on unchanged files can skip the
// work.
//
// Caching is opt-in. The CLI uses a [FileCache] under the user cache
// directory when enabled and a [NullCache] otherwise; library callers pass
// whichever [Cache] they like to the pipeline runner.
//
// Keys are produced by a [Keyer] from input hashes and the options that
// affect the output:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.MeshKey(cache.Hash(overlay), cache.Hash(surface), cache.MeshKeyOpts{Format: "gltf"})
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached artifacts.
const (
	TTLMesh  = 7 * 24 * time.Hour
	TTLImage = 7 * 24 * time.Hour
	TTLTable = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys for each artifact kind.
type Keyer interface {
	MeshKey(overlayHash, surfaceHash string, opts MeshKeyOpts) string
	ImageKey(overlayHash, tableHash string, opts ImageKeyOpts) string
	TableKey(sphereHash string) string
}

// MeshKeyOpts are the options that change a mesh artifact.
type MeshKeyOpts struct {
	Format   string   `json:"format"` // ply, gltf or glb
	Colormap string   `json:"colormap"`
	Name     string   `json:"name"`     // scene mesh and node name
	Comments []string `json:"comments"` // ply header comments
}

// ImageKeyOpts are the options that change a rendered projection image.
type ImageKeyOpts struct {
	Format     string  `json:"format"`
	Colormap   string  `json:"colormap"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PointScale float64 `json:"point_scale"`
}

// DefaultKeyer hashes key components into "kind:sha256" strings.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MeshKey generates a key for a colorized mesh artifact.
func (DefaultKeyer) MeshKey(overlayHash, surfaceHash string, opts MeshKeyOpts) string {
	return hashKey("mesh", overlayHash, surfaceHash, opts)
}

// ImageKey generates a key for a rendered projection image.
func (DefaultKeyer) ImageKey(overlayHash, tableHash string, opts ImageKeyOpts) string {
	return hashKey("image", overlayHash, tableHash, opts)
}

// TableKey generates a key for a projection table computed from a sphere.
func (DefaultKeyer) TableKey(sphereHash string) string {
	return "table:" + sphereHash
}

var _ Keyer = DefaultKeyer{}
