// Package projection flattens spherical surfaces with the Mollweide
// equal-area projection and renders per-vertex overlays on the result.
//
// A projection table holds one (x, y) pair per vertex. Tables are either
// computed from a registered sphere surface with [Project] or read from a CSV
// file produced elsewhere ([LoadTable]). [Render] draws an overlay on a table
// as a scatter plot.
package projection

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/plotter"

	"github.com/matzehuels/surfviz/pkg/mesh"
)

const (
	newtonTol   = 1e-12
	newtonSteps = 50
)

// Mollweide projects a point given by longitude and latitude in radians.
// x lies in [-2√2, 2√2] and y in [-√2, √2].
func Mollweide(lon, lat float64) (x, y float64) {
	theta := auxiliaryAngle(lat)
	return 2 * math.Sqrt2 / math.Pi * lon * math.Cos(theta), math.Sqrt2 * math.Sin(theta)
}

// auxiliaryAngle solves 2θ + sin 2θ = π sin φ for θ by Newton iteration.
func auxiliaryAngle(lat float64) float64 {
	if math.Abs(lat) >= math.Pi/2-1e-12 {
		return math.Copysign(math.Pi/2, lat)
	}
	target := math.Pi * math.Sin(lat)
	theta := lat
	for range newtonSteps {
		f := 2*theta + math.Sin(2*theta) - target
		df := 2 + 2*math.Cos(2*theta)
		if df == 0 {
			break
		}
		step := f / df
		theta -= step
		if math.Abs(step) < newtonTol {
			break
		}
	}
	return theta
}

// Spherical returns the longitude and latitude in radians of v seen from the
// origin. The origin itself maps to (0, 0).
func Spherical(v r3.Vec) (lon, lat float64) {
	r := r3.Norm(v)
	if r == 0 {
		return 0, 0
	}
	return math.Atan2(v.Y, v.X), math.Asin(math.Max(-1, math.Min(1, v.Z/r)))
}

// Project computes a projection table for a sphere surface. The sphere is
// centered on its centroid first; the input mesh is not modified.
func Project(sphere *mesh.Mesh) plotter.XYs {
	c := sphere.Centroid()
	xys := make(plotter.XYs, sphere.VertexCount())
	for i, v := range sphere.Vertices {
		lon, lat := Spherical(r3.Sub(v, c))
		xys[i].X, xys[i].Y = Mollweide(lon, lat)
	}
	return xys
}
