package colormap

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// lutSize is the number of entries in the hot lookup table.
const lutSize = 256

// segment is one breakpoint of a piecewise-linear channel: at position x the
// channel takes value y.
type segment struct{ x, y float64 }

// Channel breakpoints of the classic "hot" map: black through red, orange
// and yellow to white.
var (
	hotRed   = []segment{{0, 0.0416}, {0.365079, 1}, {1, 1}}
	hotGreen = []segment{{0, 0}, {0.365079, 0}, {0.746032, 1}, {1, 1}}
	hotBlue  = []segment{{0, 0}, {0.746032, 0}, {1, 1}}
)

// hotLUT is the 256-entry table every Hot instance samples from.
var hotLUT = buildLUT(lutSize, hotRed, hotGreen, hotBlue)

func buildLUT(n int, r, g, b []segment) [][3]uint8 {
	lut := make([][3]uint8, n)
	for i := range lut {
		x := float64(i) / float64(n-1)
		lut[i] = [3]uint8{toByte(interp(r, x)), toByte(interp(g, x)), toByte(interp(b, x))}
	}
	return lut
}

func interp(segs []segment, x float64) float64 {
	for i := 1; i < len(segs); i++ {
		lo, hi := segs[i-1], segs[i]
		if x <= hi.x {
			if hi.x == lo.x {
				return hi.y
			}
			return lo.y + (x-lo.x)*(hi.y-lo.y)/(hi.x-lo.x)
		}
	}
	return segs[len(segs)-1].y
}

// toByte truncates a [0,1] channel to 8 bits.
func toByte(v float64) uint8 {
	return uint8(math.Min(255, math.Max(0, v*255)))
}

// Hot is the "hot" colormap. It implements [palette.ColorMap].
//
// Values are binned into 256 levels between Min and Max; the top bin is
// closed so Max maps to white.
type Hot struct {
	min, max float64
	alpha    float64
}

// NewHot returns a Hot colormap over [0, 1] with full opacity.
func NewHot() *Hot {
	return &Hot{min: 0, max: 1, alpha: 1}
}

// At implements [palette.ColorMap].
func (h *Hot) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < h.min:
		return nil, palette.ErrUnderflow
	case v > h.max:
		return nil, palette.ErrOverflow
	}
	var t float64
	if h.max > h.min {
		t = (v - h.min) / (h.max - h.min)
	}
	idx := min(int(t*lutSize), lutSize-1)
	c := hotLUT[idx]
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: uint8(h.alpha * 255)}, nil
}

// Max implements [palette.ColorMap].
func (h *Hot) Max() float64 { return h.max }

// SetMax implements [palette.ColorMap].
func (h *Hot) SetMax(v float64) { h.max = v }

// Min implements [palette.ColorMap].
func (h *Hot) Min() float64 { return h.min }

// SetMin implements [palette.ColorMap].
func (h *Hot) SetMin(v float64) { h.min = v }

// Alpha implements [palette.ColorMap].
func (h *Hot) Alpha() float64 { return h.alpha }

// SetAlpha implements [palette.ColorMap]. It panics if a is outside [0, 1].
func (h *Hot) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("colormap: alpha out of range")
	}
	h.alpha = a
}

// Palette implements [palette.ColorMap] by sampling n evenly spaced values
// between Min and Max.
func (h *Hot) Palette(n int) palette.Palette {
	colors := make(colorList, n)
	for i := range colors {
		v := h.min
		if n > 1 {
			v = min(h.min+float64(i)*(h.max-h.min)/float64(n-1), h.max)
		}
		colors[i], _ = h.At(v)
	}
	return colors
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }

var _ palette.ColorMap = (*Hot)(nil)
