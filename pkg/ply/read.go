package ply

import (
	"bufio"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/surfviz/pkg/errors"
	"github.com/matzehuels/surfviz/pkg/mesh"
)

type element struct {
	name  string
	count int
	props []string
	list  map[string]bool
}

func (e *element) index(name string) int {
	for i, p := range e.props {
		if p == name {
			return i
		}
	}
	return -1
}

// Read decodes an ASCII PLY mesh. Polygons with more than three corners are
// split into a triangle fan. Vertex colors are read when the file declares
// red, green and blue properties; a missing alpha reads as opaque.
func Read(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	elements, comments, err := readHeader(sc)
	if err != nil {
		return nil, err
	}

	model := &Model{Mesh: &mesh.Mesh{}, Comments: comments}
	for _, el := range elements {
		switch el.name {
		case "vertex":
			err = readVertices(sc, el, model)
		case "face":
			err = readFaces(sc, el, model.Mesh)
		default:
			err = skipRows(sc, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read ply body")
	}
	if err := model.Mesh.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func readHeader(sc *bufio.Scanner) ([]*element, []string, error) {
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing ply magic")
	}

	var (
		elements []*element
		comments []string
		format   bool
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) != 3 || fields[1] != "ascii" {
				return nil, nil, errors.New(errors.ErrCodeUnsupported, "ply format %q", strings.Join(fields[1:], " "))
			}
			format = true
		case "comment", "obj_info":
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) != 3 {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "malformed element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "bad element count %q", fields[2])
			}
			elements = append(elements, &element{name: fields[1], count: n, list: map[string]bool{}})
		case "property":
			if len(elements) == 0 {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "property before element")
			}
			el := elements[len(elements)-1]
			switch {
			case len(fields) == 5 && fields[1] == "list":
				el.props = append(el.props, fields[4])
				el.list[fields[4]] = true
			case len(fields) == 3:
				el.props = append(el.props, fields[2])
			default:
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "malformed property line %q", line)
			}
		case "end_header":
			if !format {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing format line")
			}
			return elements, comments, nil
		default:
			return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "unknown header keyword %q", fields[0])
		}
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing end_header")
}

func nextRow(sc *bufio.Scanner, el *element, i int) ([]string, error) {
	for sc.Scan() {
		if fields := strings.Fields(sc.Text()); len(fields) > 0 {
			return fields, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "%s row %d: unexpected end of file", el.name, i)
}

func readVertices(sc *bufio.Scanner, el *element, model *Model) error {
	for _, p := range el.props {
		if el.list[p] {
			return errors.New(errors.ErrCodeUnsupported, "list property %q on vertex", p)
		}
	}
	x, y, z := el.index("x"), el.index("y"), el.index("z")
	if x < 0 || y < 0 || z < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "vertex element lacks x, y or z")
	}
	r, g, b, a := el.index("red"), el.index("green"), el.index("blue"), el.index("alpha")
	hasColor := r >= 0 && g >= 0 && b >= 0

	model.Mesh.Vertices = make([]r3.Vec, el.count)
	if hasColor {
		model.Colors = make([]color.NRGBA, el.count)
	}

	for i := range el.count {
		fields, err := nextRow(sc, el, i)
		if err != nil {
			return err
		}
		if len(fields) < len(el.props) {
			return errors.New(errors.ErrCodeInvalidFormat, "vertex row %d has %d values, want %d", i, len(fields), len(el.props))
		}
		var xyz [3]float64
		for k, col := range [3]int{x, y, z} {
			if xyz[k], err = strconv.ParseFloat(fields[col], 64); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "vertex row %d", i)
			}
		}
		model.Mesh.Vertices[i] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}

		if !hasColor {
			continue
		}
		c := color.NRGBA{A: 255}
		for _, ch := range []struct {
			col int
			dst *uint8
		}{{r, &c.R}, {g, &c.G}, {b, &c.B}, {a, &c.A}} {
			if ch.col < 0 {
				continue
			}
			v, err := strconv.ParseUint(fields[ch.col], 10, 8)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "vertex row %d color", i)
			}
			*ch.dst = uint8(v)
		}
		model.Colors[i] = c
	}
	return nil
}

func readFaces(sc *bufio.Scanner, el *element, m *mesh.Mesh) error {
	col := el.index("vertex_indices")
	if col < 0 {
		col = el.index("vertex_index")
	}
	if col < 0 || !el.list[el.props[col]] {
		return errors.New(errors.ErrCodeInvalidFormat, "face element lacks a vertex_indices list")
	}

	m.Faces = make([]mesh.Face, 0, el.count)
	for i := range el.count {
		fields, err := nextRow(sc, el, i)
		if err != nil {
			return err
		}
		// Lists before col shift the start of ours.
		pos := 0
		for p := 0; p < col; p++ {
			if !el.list[el.props[p]] {
				pos++
				continue
			}
			n, err := listLen(fields, pos, i)
			if err != nil {
				return err
			}
			pos += 1 + n
		}
		n, err := listLen(fields, pos, i)
		if err != nil {
			return err
		}
		if n < 3 {
			return errors.New(errors.ErrCodeInvalidMesh, "face %d has %d corners", i, n)
		}
		idx := make([]int, n)
		for k := range idx {
			if idx[k], err = strconv.Atoi(fields[pos+1+k]); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "face row %d", i)
			}
		}
		for k := 1; k+1 < n; k++ {
			m.Faces = append(m.Faces, mesh.Face{idx[0], idx[k], idx[k+1]})
		}
	}
	return nil
}

func listLen(fields []string, pos, row int) (int, error) {
	if pos >= len(fields) {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "face row %d truncated", row)
	}
	n, err := strconv.Atoi(fields[pos])
	if err != nil || n < 0 || pos+1+n > len(fields) {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "face row %d: bad list length %q", row, fields[pos])
	}
	return n, nil
}

func skipRows(sc *bufio.Scanner, el *element) error {
	for i := range el.count {
		if _, err := nextRow(sc, el, i); err != nil {
			return err
		}
	}
	return nil
}
