package cache

// ScopedKeyer wraps a Keyer with a prefix so that separate namespaces can
// share one store. The CLI scopes keys by build version, which keeps
// artifacts from an older encoder from being served after an upgrade:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MeshKey generates a prefixed key for mesh artifacts.
func (k *ScopedKeyer) MeshKey(overlayHash, surfaceHash string, opts MeshKeyOpts) string {
	return k.prefix + k.inner.MeshKey(overlayHash, surfaceHash, opts)
}

// ImageKey generates a prefixed key for projection images.
func (k *ScopedKeyer) ImageKey(overlayHash, tableHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(overlayHash, tableHash, opts)
}

// TableKey generates a prefixed key for projection tables.
func (k *ScopedKeyer) TableKey(sphereHash string) string {
	return k.prefix + k.inner.TableKey(sphereHash)
}
