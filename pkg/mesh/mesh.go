// Package mesh holds triangulated surface geometry and the small set of
// operations the visualization pipelines apply to it before export.
//
// A [Mesh] is a flat list of vertex coordinates and a list of triangles that
// index into it. Triangles loaded from formats with 1-based numbering keep
// their original indices until [Mesh.Normalize] is called; [Mesh.IndexBase]
// records which convention the faces currently use.
//
// Typical preparation for export:
//
//	if err := m.ValidateOverlay(len(overlay)); err != nil {
//	    return err
//	}
//	m.Normalize()
//	if err := m.Validate(); err != nil {
//	    return err
//	}
//	m.Center()
package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// Face is a triangle given as three vertex indices.
type Face [3]int

// Mesh is a triangulated surface.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face

	// IndexBase is the number of the first vertex as used by Faces:
	// 0 for C-style numbering, 1 for formats that count from one.
	IndexBase int
}

// New creates a mesh from vertex coordinates and 0-based faces.
func New(vertices []r3.Vec, faces []Face) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([]r3.Vec, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		IndexBase: m.IndexBase,
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Faces, m.Faces)
	return c
}

// Centroid returns the mean of all vertex coordinates.
// The centroid of an empty mesh is the origin.
func (m *Mesh) Centroid() r3.Vec {
	if len(m.Vertices) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, v := range m.Vertices {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(m.Vertices)), sum)
}

// Center translates the mesh so that its centroid sits at the origin and
// returns the translation that was subtracted.
func (m *Mesh) Center() r3.Vec {
	c := m.Centroid()
	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Sub(v, c)
	}
	return c
}

// Normalize rewrites faces to 0-based numbering. It is a no-op for meshes
// that are already 0-based.
func (m *Mesh) Normalize() {
	if m.IndexBase == 0 {
		return
	}
	for i := range m.Faces {
		for j := range m.Faces[i] {
			m.Faces[i][j] -= m.IndexBase
		}
	}
	m.IndexBase = 0
}

// Validate checks that every face index refers to an existing vertex
// under the mesh's current numbering.
func (m *Mesh) Validate() error {
	lo, hi := m.IndexBase, len(m.Vertices)-1+m.IndexBase
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < lo || idx > hi {
				return errors.New(errors.ErrCodeInvalidMesh,
					"face %d references vertex %d (valid range %d..%d)", i, idx, lo, hi)
			}
		}
	}
	return nil
}

// ValidateOverlay checks that an overlay of n values can be painted onto m.
func (m *Mesh) ValidateOverlay(n int) error {
	if n != len(m.Vertices) {
		return errors.New(errors.ErrCodeSizeMismatch,
			"overlay has %d values but mesh has %d vertices", n, len(m.Vertices))
	}
	return nil
}

// Bounds returns the per-axis minimum and maximum vertex coordinates.
// Both are the origin for an empty mesh.
func (m *Mesh) Bounds() (lo, hi r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = r3.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = r3.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}
