package freesurfer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/mesh"
)

// Magic numbers at the start of FreeSurfer binary files (3-byte big-endian).
const (
	magicTriangle = 0xFFFFFE
	magicQuad     = 0xFFFFFF
	magicNewQuad  = 0xFFFFFD
	magicNewCurv  = 0xFFFFFF
)

// maxElements bounds vertex and face counts read from headers so a corrupt
// header fails fast instead of attempting a huge allocation.
const maxElements = 1 << 26

// ReadGeometry decodes a FreeSurfer triangle surface from r.
// The returned mesh uses 0-based face indices.
func ReadGeometry(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	magic, err := readUint24(br)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read surface magic")
	}
	switch magic {
	case magicTriangle:
	case magicQuad, magicNewQuad:
		return nil, errors.New(errors.ErrCodeUnsupported, "quad surface files are not supported")
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "not a surface file (magic %#06x)", magic)
	}

	// "created by <user> on <date>\n\n"
	for i := 0; i < 2; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read surface header")
		}
	}

	var counts [2]int32
	if err := binary.Read(br, binary.BigEndian, &counts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read surface counts")
	}
	nv, nf := int(counts[0]), int(counts[1])
	if err := checkCount("vertex", nv); err != nil {
		return nil, err
	}
	if err := checkCount("face", nf); err != nil {
		return nil, err
	}

	coords := make([]float32, 3*nv)
	if err := binary.Read(br, binary.BigEndian, coords); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %d vertices", nv)
	}
	idx := make([]int32, 3*nf)
	if err := binary.Read(br, binary.BigEndian, idx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %d faces", nf)
	}

	m := &mesh.Mesh{
		Vertices: make([]r3.Vec, nv),
		Faces:    make([]mesh.Face, nf),
	}
	for i := range m.Vertices {
		m.Vertices[i] = r3.Vec{
			X: float64(coords[3*i]),
			Y: float64(coords[3*i+1]),
			Z: float64(coords[3*i+2]),
		}
	}
	for i := range m.Faces {
		m.Faces[i] = mesh.Face{int(idx[3*i]), int(idx[3*i+1]), int(idx[3*i+2])}
	}
	return m, nil
}

// LoadGeometry reads the surface file at path.
func LoadGeometry(path string) (*mesh.Mesh, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadGeometry(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteGeometry encodes m as a FreeSurfer triangle surface.
// Faces are written with the mesh's current numbering; callers exporting a
// 1-based mesh should Normalize it first.
func WriteGeometry(w io.Writer, m *mesh.Mesh, createdBy string) error {
	bw := bufio.NewWriter(w)

	if err := writeUint24(bw, magicTriangle); err != nil {
		return err
	}
	stamp := strings.ReplaceAll(createdBy, "\n", " ")
	if _, err := fmt.Fprintf(bw, "created by %s\n\n", stamp); err != nil {
		return err
	}

	counts := [2]int32{int32(len(m.Vertices)), int32(len(m.Faces))}
	if err := binary.Write(bw, binary.BigEndian, counts); err != nil {
		return err
	}

	coords := make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		coords = append(coords, float32(v.X), float32(v.Y), float32(v.Z))
	}
	if err := binary.Write(bw, binary.BigEndian, coords); err != nil {
		return err
	}

	idx := make([]int32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		idx = append(idx, int32(f[0]), int32(f[1]), int32(f[2]))
	}
	if err := binary.Write(bw, binary.BigEndian, idx); err != nil {
		return err
	}
	return bw.Flush()
}

func checkCount(what string, n int) error {
	if n < 0 || n > maxElements {
		return errors.New(errors.ErrCodeInvalidInput, "implausible %s count %d", what, n)
	}
	return nil
}

func readUint24(r io.Reader) (int, error) {
	var b [3]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2]), nil
}

func writeUint24(w io.Writer, v int) error {
	_, err := w.Write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
	return err
}
