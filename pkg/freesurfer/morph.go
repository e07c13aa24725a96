package freesurfer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// ReadMorphData decodes a FreeSurfer curv file (thickness, curv, sulc, area,
// ...). Both the current format and the legacy 3-byte format are accepted;
// legacy values are stored as int16 hundredths.
func ReadMorphData(r io.Reader) ([]float64, error) {
	br := bufio.NewReader(r)

	magic, err := readUint24(br)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read curv magic")
	}

	if magic != magicNewCurv {
		// Legacy layout: the first 3 bytes are the vertex count.
		nv := magic
		if _, err := readUint24(br); err != nil { // face count, unused
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read curv header")
		}
		raw := make([]int16, nv)
		if err := binary.Read(br, binary.BigEndian, raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %d curv values", nv)
		}
		out := make([]float64, nv)
		for i, v := range raw {
			out[i] = float64(v) / 100
		}
		return out, nil
	}

	var hdr [3]int32 // vertices, faces, values per vertex
	if err := binary.Read(br, binary.BigEndian, &hdr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read curv header")
	}
	nv := int(hdr[0])
	if err := checkCount("vertex", nv); err != nil {
		return nil, err
	}
	if hdr[2] != 1 {
		return nil, errors.New(errors.ErrCodeUnsupported, "curv files with %d values per vertex are not supported", hdr[2])
	}

	raw := make([]float32, nv)
	if err := binary.Read(br, binary.BigEndian, raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %d curv values", nv)
	}
	out := make([]float64, nv)
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

// LoadMorphData reads the curv file at path.
func LoadMorphData(path string) ([]float64, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := ReadMorphData(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// WriteMorphData encodes values as a current-format curv file.
// faceCount is recorded in the header only; readers ignore it.
func WriteMorphData(w io.Writer, values []float64, faceCount int) error {
	bw := bufio.NewWriter(w)
	if err := writeUint24(bw, magicNewCurv); err != nil {
		return err
	}
	hdr := [3]int32{int32(len(values)), int32(faceCount), 1}
	if err := binary.Write(bw, binary.BigEndian, hdr); err != nil {
		return err
	}
	raw := make([]float32, len(values))
	for i, v := range values {
		raw[i] = float32(v)
	}
	if err := binary.Write(bw, binary.BigEndian, raw); err != nil {
		return err
	}
	return bw.Flush()
}

// open opens path for reading, mapping failures onto error codes.
func open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
