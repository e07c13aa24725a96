package mesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/surfviz/pkg/errors"
)

func triangle() *Mesh {
	return &Mesh{
		Vertices:  []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Faces:     []Face{{1, 2, 3}},
		IndexBase: 1,
	}
}

func TestCenter(t *testing.T) {
	m := triangle()
	shift := m.Center()

	want := r3.Vec{X: 1.0 / 3, Y: 1.0 / 3}
	if r3.Norm(r3.Sub(shift, want)) > 1e-12 {
		t.Errorf("Center() shift = %v, want %v", shift, want)
	}

	c := m.Centroid()
	if r3.Norm(c) > 1e-12 {
		t.Errorf("centroid after Center() = %v, want origin", c)
	}
}

func TestCenterLargeOffset(t *testing.T) {
	m := &Mesh{}
	for i := 0; i < 1000; i++ {
		f := float64(i)
		m.Vertices = append(m.Vertices, r3.Vec{X: 1e4 + f, Y: -3e3 + f*0.5, Z: math.Sin(f)})
	}
	m.Center()

	c := m.Centroid()
	if math.Abs(c.X) > 1e-9 || math.Abs(c.Y) > 1e-9 || math.Abs(c.Z) > 1e-9 {
		t.Errorf("centroid = %v, want origin within tolerance", c)
	}
}

func TestCenterEmpty(t *testing.T) {
	m := &Mesh{}
	if got := m.Center(); got != (r3.Vec{}) {
		t.Errorf("Center() on empty mesh = %v, want origin", got)
	}
}

func TestNormalize(t *testing.T) {
	m := triangle()
	m.Normalize()

	if diff := cmp.Diff([]Face{{0, 1, 2}}, m.Faces); diff != "" {
		t.Errorf("faces mismatch (-want +got):\n%s", diff)
	}
	if m.IndexBase != 0 {
		t.Errorf("IndexBase = %d, want 0", m.IndexBase)
	}

	// Normalizing twice must not shift again.
	m.Normalize()
	if m.Faces[0][0] != 0 {
		t.Errorf("second Normalize() shifted faces: %v", m.Faces)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		faces   []Face
		base    int
		wantErr bool
	}{
		{"valid 0-based", []Face{{0, 1, 2}}, 0, false},
		{"valid 1-based", []Face{{1, 2, 3}}, 1, false},
		{"1-based index 0", []Face{{0, 1, 2}}, 1, true},
		{"0-based index V", []Face{{0, 1, 3}}, 0, true},
		{"negative", []Face{{-1, 0, 1}}, 0, true},
		{"no faces", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := triangle()
			m.Faces = tt.faces
			m.IndexBase = tt.base
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidMesh) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMesh)
			}
		})
	}
}

func TestValidateOverlay(t *testing.T) {
	m := triangle()

	if err := m.ValidateOverlay(3); err != nil {
		t.Errorf("ValidateOverlay(3) = %v, want nil", err)
	}

	err := m.ValidateOverlay(4)
	if err == nil {
		t.Fatal("ValidateOverlay(4) should fail")
	}
	if !errors.Is(err, errors.ErrCodeSizeMismatch) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeSizeMismatch)
	}
}

func TestBounds(t *testing.T) {
	m := triangle()
	m.Vertices = append(m.Vertices, r3.Vec{X: -2, Y: 5, Z: 1})

	lo, hi := m.Bounds()
	if lo != (r3.Vec{X: -2, Y: 0, Z: 0}) {
		t.Errorf("lo = %v", lo)
	}
	if hi != (r3.Vec{X: 1, Y: 5, Z: 1}) {
		t.Errorf("hi = %v", hi)
	}
}

func TestClone(t *testing.T) {
	m := triangle()
	c := m.Clone()
	c.Vertices[0].X = 42
	c.Faces[0][0] = 7

	if m.Vertices[0].X == 42 || m.Faces[0][0] == 7 {
		t.Error("Clone() shares storage with the original")
	}
	if c.IndexBase != m.IndexBase {
		t.Errorf("Clone() IndexBase = %d, want %d", c.IndexBase, m.IndexBase)
	}
}
