package freesurfer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// MGH data types.
const (
	MGHUChar = 0
	MGHInt   = 1
	MGHFloat = 3
	MGHShort = 4
)

// mghHeaderSize is the fixed size of the MGH header; voxel data starts here.
const mghHeaderSize = 284

// MGH is a decoded MGH volume. Voxels are stored in file order: the first
// dimension varies fastest, frames vary slowest.
type MGH struct {
	Dims      [4]int // width, height, depth, frames
	Type      int
	DOF       int
	VoxelSize [3]float64 // zero unless the header carries RAS information
	Data      []float64
}

// FrameSize returns the number of voxels in one frame.
func (v *MGH) FrameSize() int {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

// Frame returns the voxels of frame i flattened in file order.
// A surface overlay stored as an N x 1 x 1 volume yields its N values.
// Frame returns nil when frame i is not present in Data.
func (v *MGH) Frame(i int) []float64 {
	n := v.FrameSize()
	if i < 0 || n <= 0 || i >= len(v.Data)/n {
		return nil
	}
	return v.Data[i*n : (i+1)*n]
}

type mghHeader struct {
	Version int32
	Width   int32
	Height  int32
	Depth   int32
	Frames  int32
	Type    int32
	DOF     int32
	GoodRAS int16
}

// ReadMGH decodes an uncompressed MGH volume from r.
func ReadMGH(r io.Reader) (*MGH, error) {
	br := bufio.NewReader(r)

	var hdr mghHeader
	if err := binary.Read(br, binary.BigEndian, &hdr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read mgh header")
	}
	if hdr.Version != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an mgh file (version %d)", hdr.Version)
	}

	vol := &MGH{
		Dims: [4]int{int(hdr.Width), int(hdr.Height), int(hdr.Depth), int(hdr.Frames)},
		Type: int(hdr.Type),
		DOF:  int(hdr.DOF),
	}
	total := 1
	for _, d := range vol.Dims {
		if d < 0 || d > maxElements {
			return nil, errors.New(errors.ErrCodeInvalidInput, "implausible mgh dimensions %v", vol.Dims)
		}
		if d != 0 && total > maxElements/d {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mgh volume too large (dimensions %v)", vol.Dims)
		}
		total *= d
	}

	consumed := binary.Size(hdr)
	if hdr.GoodRAS > 0 {
		var ras [15]float32 // voxel sizes, direction cosines, center
		if err := binary.Read(br, binary.BigEndian, &ras); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read mgh ras block")
		}
		for i := range vol.VoxelSize {
			vol.VoxelSize[i] = float64(ras[i])
		}
		consumed += binary.Size(ras)
	}
	if _, err := br.Discard(mghHeaderSize - consumed); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "skip mgh header")
	}

	data, err := readVoxels(br, vol.Type, total)
	if err != nil {
		return nil, err
	}
	vol.Data = data
	return vol, nil
}

func readVoxels(r io.Reader, typ, n int) ([]float64, error) {
	out := make([]float64, n)
	var err error
	switch typ {
	case MGHUChar:
		raw := make([]uint8, n)
		if _, err = io.ReadFull(r, raw); err == nil {
			for i, v := range raw {
				out[i] = float64(v)
			}
		}
	case MGHInt:
		raw := make([]int32, n)
		if err = binary.Read(r, binary.BigEndian, raw); err == nil {
			for i, v := range raw {
				out[i] = float64(v)
			}
		}
	case MGHFloat:
		raw := make([]float32, n)
		if err = binary.Read(r, binary.BigEndian, raw); err == nil {
			for i, v := range raw {
				out[i] = float64(v)
			}
		}
	case MGHShort:
		raw := make([]int16, n)
		if err = binary.Read(r, binary.BigEndian, raw); err == nil {
			for i, v := range raw {
				out[i] = float64(v)
			}
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "mgh data type %d is not supported", typ)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %d voxels", n)
	}
	return out, nil
}

// LoadMGH reads an MGH volume from path. Files ending in .mgz or .gz are
// gunzipped first.
func LoadMGH(path string) (*MGH, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: gunzip", path)
		}
		defer zr.Close()
		r = zr
	}

	vol, err := ReadMGH(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vol, nil
}

// WriteMGH encodes values as a float MGH volume of shape len(values) x 1 x 1
// with a single frame, the layout used for surface overlays.
func WriteMGH(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	hdr := mghHeader{
		Version: 1,
		Width:   int32(len(values)),
		Height:  1,
		Depth:   1,
		Frames:  1,
		Type:    MGHFloat,
	}
	if err := binary.Write(bw, binary.BigEndian, hdr); err != nil {
		return err
	}
	pad := make([]byte, mghHeaderSize-binary.Size(hdr))
	if _, err := bw.Write(pad); err != nil {
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

func isCompressed(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".mgz") || strings.HasSuffix(p, ".gz")
}
