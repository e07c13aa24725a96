// Package colormap maps per-vertex scalar overlays to colors.
//
// Colormaps are gonum [palette.ColorMap] values, so the same map drives both
// the mesh exporter (one RGBA color per vertex) and the projection renderer
// (gonum/plot glyph colors). [Hot] is the default; [Lookup] also resolves the
// Moreland maps shipped with gonum/plot.
//
// Overlays are normalized by their own observed range before mapping:
//
//	cmap, _ := colormap.Lookup("hot")
//	colors, err := colormap.Colorize(overlay, cmap)
package colormap

import (
	"image/color"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// Default is the colormap used when none is configured.
const Default = "hot"

var registry = map[string]func() palette.ColorMap{
	"hot":       func() palette.ColorMap { return NewHot() },
	"blackbody": moreland.ExtendedBlackBody,
	"kindlmann": moreland.ExtendedKindlmann,
	"coolwarm":  func() palette.ColorMap { return moreland.SmoothBlueRed() },
}

// Names returns the registered colormap names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh instance of the named colormap spanning [0, 1].
func Lookup(name string) (palette.ColorMap, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColormap, "unknown colormap %q (must be one of: %v)", name, Names())
	}
	cm := mk()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm, nil
}

// Range returns the minimum and maximum of the non-NaN values.
// ok is false when there are none.
func Range(values []float64) (lo, hi float64, ok bool) {
	finite := values
	if floats.HasNaN(values) {
		finite = slices.DeleteFunc(slices.Clone(values), math.IsNaN)
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}

// Normalize rescales values linearly so the observed minimum maps to 0 and
// the maximum to 1. A constant overlay maps to all zeros. NaNs are kept.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	lo, hi, ok := Range(values)
	if !ok {
		copy(out, values)
		return out
	}
	span := hi - lo
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case span > 0:
			out[i] = (v - lo) / span
		}
	}
	return out
}

// Colorize normalizes values and maps them through cm, returning one color
// per value. cm's range is reset to [0, 1]. NaN values become transparent
// black.
func Colorize(values []float64, cm palette.ColorMap) ([]color.NRGBA, error) {
	cm.SetMin(0)
	cm.SetMax(1)

	out := make([]color.NRGBA, len(values))
	for i, t := range Normalize(values) {
		if math.IsNaN(t) {
			continue
		}
		c, err := cm.At(math.Min(1, math.Max(0, t)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "map value %d", i)
		}
		out[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return out, nil
}
