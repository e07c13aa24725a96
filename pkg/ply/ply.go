// Package ply reads and writes colorized triangle meshes in the ASCII
// Polygon File Format.
//
// [Write] produces the fixed layout consumed by downstream scene exporters:
//
//	ply
//	format ascii 1.0
//	element vertex V
//	property float x
//	property float y
//	property float z
//	property uchar red
//	property uchar green
//	property uchar blue
//	property uchar alpha
//	element face F
//	property list uchar int vertex_indices
//	end_header
//
// followed by V rows "x y z r g b a" and F rows "3 i0 i1 i2". [Read] accepts
// that layout and the common variations of it (any vertex property order,
// extra elements, polygons of any size).
package ply

import (
	"bufio"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/mesh"
)

// Model is a mesh together with its per-vertex colors.
type Model struct {
	Mesh *mesh.Mesh

	// Colors has one entry per vertex, or is nil when the file carries no
	// color properties.
	Colors []color.NRGBA

	// Comments holds the header comment lines in order.
	Comments []string
}

// Write encodes m with one color per vertex. Faces are written 0-based
// regardless of m.IndexBase.
func Write(w io.Writer, m *mesh.Mesh, colors []color.NRGBA, comments ...string) error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidMesh, "mesh is nil")
	}
	if len(colors) != m.VertexCount() {
		return errors.New(errors.ErrCodeSizeMismatch,
			"%d colors for %d vertices", len(colors), m.VertexCount())
	}
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	writeHeader(bw, m.VertexCount(), m.FaceCount(), comments)

	var row []byte
	for i, v := range m.Vertices {
		c := colors[i]
		row = row[:0]
		row = strconv.AppendFloat(row, float64(float32(v.X)), 'g', -1, 32)
		row = append(row, ' ')
		row = strconv.AppendFloat(row, float64(float32(v.Y)), 'g', -1, 32)
		row = append(row, ' ')
		row = strconv.AppendFloat(row, float64(float32(v.Z)), 'g', -1, 32)
		for _, ch := range [4]uint8{c.R, c.G, c.B, c.A} {
			row = append(row, ' ')
			row = strconv.AppendUint(row, uint64(ch), 10)
		}
		row = append(row, '\n')
		bw.Write(row)
	}

	for _, f := range m.Faces {
		row = append(row[:0], '3')
		for _, idx := range f {
			row = append(row, ' ')
			row = strconv.AppendInt(row, int64(idx-m.IndexBase), 10)
		}
		row = append(row, '\n')
		bw.Write(row)
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write ply")
	}
	return nil
}

var commentLine = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func writeHeader(w *bufio.Writer, vertices, faces int, comments []string) {
	w.WriteString("ply\nformat ascii 1.0\n")
	for _, c := range comments {
		w.WriteString("comment " + commentLine.Replace(c) + "\n")
	}
	w.WriteString("element vertex " + strconv.Itoa(vertices) + "\n")
	for _, p := range []string{"float x", "float y", "float z",
		"uchar red", "uchar green", "uchar blue", "uchar alpha"} {
		w.WriteString("property " + p + "\n")
	}
	w.WriteString("element face " + strconv.Itoa(faces) + "\n")
	w.WriteString("property list uchar int vertex_indices\n")
	w.WriteString("end_header\n")
}
