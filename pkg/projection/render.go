package projection

import (
	"bytes"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surfviz/pkg/colormap"
	"github.com/matzehuels/surfviz/pkg/errors"
)

// Image formats accepted by Render.
var Formats = []string{"png", "svg", "pdf", "jpg", "tiff", "eps"}

// RenderOptions controls the rendered image. Zero values select defaults.
type RenderOptions struct {
	Width, Height vg.Length // default 6.4in x 4.8in
	Format        string    // default "png"
	Colormap      string    // default colormap.Default

	// PointScale converts overlay magnitude to marker area in square
	// points. The default of 1 makes a value of v cover v pt².
	PointScale float64
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 6.4 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 4.8 * vg.Inch
	}
	if o.Format == "" {
		o.Format = "png"
	}
	o.Format = strings.ToLower(o.Format)
	if o.Colormap == "" {
		o.Colormap = colormap.Default
	}
	if o.PointScale <= 0 {
		o.PointScale = 1
	}
	return o
}

// ValidateFormat reports whether format names a supported image format.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, strings.ToLower(format)) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q (must be one of: %s)",
			format, strings.Join(Formats, ", "))
	}
	return nil
}

// Render draws one marker per overlay value at the matching table position,
// colored by the normalized value and with area proportional to its
// magnitude. Axes are hidden.
func Render(values []float64, table plotter.XYs, opts RenderOptions) ([]byte, error) {
	opts = opts.withDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if len(values) != len(table) {
		return nil, errors.New(errors.ErrCodeSizeMismatch,
			"overlay has %d values but projection table has %d rows", len(values), len(table))
	}

	cm, err := colormap.Lookup(opts.Colormap)
	if err != nil {
		return nil, err
	}
	colors, err := colormap.Colorize(values, cm)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.HideAxes()

	if len(table) > 0 {
		sc, err := plotter.NewScatter(table)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "projection table")
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  colors[i],
				Radius: markerRadius(values[i], opts.PointScale),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(sc)
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s canvas", opts.Format)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", opts.Format)
	}
	return buf.Bytes(), nil
}

// markerRadius returns the radius of a circle with area scale*|v| pt².
func markerRadius(v, scale float64) vg.Length {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return vg.Points(math.Sqrt(scale*math.Abs(v)/math.Pi))
}
