package freesurfer

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// volumeExts are the overlay extensions that denote MGH volumes, longest first.
var volumeExts = []string{".mgh.gz", ".mgz", ".mgh"}

// VolumeExt returns the MGH extension of path (".mgh", ".mgz" or ".mgh.gz"),
// or "" if path does not name an MGH volume. Matching ignores case.
func VolumeExt(path string) string {
	p := strings.ToLower(path)
	for _, ext := range volumeExts {
		if strings.HasSuffix(p, ext) {
			return path[len(path)-len(ext):]
		}
	}
	return ""
}

// TrimVolumeExt strips the MGH extension from path, if any. Other names are
// returned unchanged, so "lh.thickness" stays "lh.thickness".
func TrimVolumeExt(path string) string {
	return strings.TrimSuffix(path, VolumeExt(path))
}

// LoadOverlay reads a per-vertex scalar overlay. MGH volumes contribute
// their first frame; any other file is read as a curv file.
func LoadOverlay(path string) ([]float64, error) {
	if VolumeExt(path) == "" {
		return LoadMorphData(path)
	}
	vol, err := LoadMGH(path)
	if err != nil {
		return nil, err
	}
	if vol.Dims[3] == 0 {
		return nil, nil
	}
	return vol.Frame(0), nil
}

// ReadOverlay decodes an overlay from r. name selects the decoder the same
// way LoadOverlay does: MGH extensions read frame 0 of a volume, gunzipping
// .mgz and .mgh.gz first; any other name is read as a curv file.
func ReadOverlay(r io.Reader, name string) ([]float64, error) {
	if VolumeExt(name) == "" {
		return ReadMorphData(r)
	}
	if isCompressed(name) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "gunzip")
		}
		defer zr.Close()
		r = zr
	}
	vol, err := ReadMGH(r)
	if err != nil {
		return nil, err
	}
	if vol.Dims[3] == 0 {
		return nil, nil
	}
	return vol.Frame(0), nil
}

// OutputBase returns the base file name used for artifacts derived from the
// overlay at path: its base name with any MGH extension removed.
func OutputBase(path string) string {
	return TrimVolumeExt(filepath.Base(path))
}

// OverlayInfo is the metadata encoded in a conventional overlay file name
// such as "lh.thickness.fwhm10.fsaverage.mgh".
type OverlayInfo struct {
	Hemisphere string // "lh", "rh" or "" when absent
	Measure    string
	FWHM       int    // -1 when absent
	Template   string // e.g. "fsaverage"; "" for native space
}

// ParseOverlayName extracts whatever metadata the base name of path carries.
// Unrecognized names yield an OverlayInfo with only FWHM set to -1.
func ParseOverlayName(path string) OverlayInfo {
	info := OverlayInfo{FWHM: -1}
	parts := strings.Split(OutputBase(path), ".")
	if len(parts) > 1 && (parts[0] == "lh" || parts[0] == "rh") {
		info.Hemisphere = parts[0]
		info.Measure = parts[1]
		parts = parts[2:]
	}
	for _, p := range parts {
		switch {
		case strings.HasPrefix(p, "fwhm"):
			if n, err := strconv.Atoi(strings.TrimPrefix(p, "fwhm")); err == nil && n >= 0 {
				info.FWHM = n
			}
		case strings.HasPrefix(p, "fsaverage"):
			info.Template = p
		}
	}
	return info
}
