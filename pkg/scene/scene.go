// Package scene exports colorized meshes as glTF 2.0 scenes.
//
// A scene holds a single mesh actor: one node referencing one mesh whose only
// primitive carries vertex positions, optional RGBA vertex colors and a
// triangle index list. Buffers are inlined as base64 data URIs for .gltf
// output or packed into the binary chunk for .glb output.
package scene

import (
	"image/color"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/matzehuels/surfviz/pkg/buildinfo"
	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/mesh"
	"github.com/matzehuels/surfviz/pkg/ply"
)

// Build converts a colorized mesh into a glTF document with a single mesh
// node named name.
func Build(model *ply.Model, name string) (*gltf.Document, error) {
	if model == nil || model.Mesh == nil {
		return nil, errors.New(errors.ErrCodeInvalidMesh, "scene: no mesh")
	}
	m := model.Mesh
	if model.Colors != nil && len(model.Colors) != m.VertexCount() {
		return nil, errors.New(errors.ErrCodeSizeMismatch,
			"scene: %d colors for %d vertices", len(model.Colors), m.VertexCount())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = buildinfo.Generator()

	attrs := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, positions(m)),
	}
	if model.Colors != nil {
		attrs[gltf.COLOR_0] = modeler.WriteColor(doc, rgba(model.Colors))
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Mode:       gltf.PrimitiveTriangles,
	}
	if m.FaceCount() > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices(m)))
	}

	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// Encode writes doc to w as JSON glTF with embedded buffers, or as GLB when
// binary is set.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	enc.SetJSONIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode gltf")
	}
	return nil
}

func positions(m *mesh.Mesh) [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	return out
}

func rgba(colors []color.NRGBA) [][4]uint8 {
	out := make([][4]uint8, len(colors))
	for i, c := range colors {
		out[i] = [4]uint8{c.R, c.G, c.B, c.A}
	}
	return out
}

func indices(m *mesh.Mesh) []uint32 {
	out := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		for _, idx := range f {
			out = append(out, uint32(idx-m.IndexBase))
		}
	}
	return out
}
