package projection

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/plot/plotter"

	"github.com/matzehuels/surfviz/pkg/errors"
)

// DefaultTable is where the projection table is looked up when no path is
// configured.
const DefaultTable = "projected.csv"

// ReadTable parses a CSV projection table. The header row must name an "x"
// and a "y" column; other columns are ignored.
func ReadTable(r io.Reader) (plotter.XYs, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read table header")
	}
	xcol, ycol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "x":
			xcol = i
		case "y":
			ycol = i
		}
	}
	if xcol < 0 || ycol < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "table header %q lacks x and y columns", header)
	}

	var xys plotter.XYs
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read table")
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[xcol]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "table row %d: x", row)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[ycol]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "table row %d: y", row)
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys, nil
}

// LoadTable reads the projection table at path. A missing file is reported
// as MISSING_PROJECTION.
func LoadTable(path string) (plotter.XYs, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeMissingProjection, err,
			"projection table %s not found (compute one from a sphere surface with 'surfviz project')", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	xys, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return xys, nil
}

// WriteTable writes xys as a CSV table with an index column, matching what
// ReadTable and common dataframe tools expect.
func WriteTable(w io.Writer, xys plotter.XYs) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"", "x", "y"})
	for i, p := range xys {
		cw.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write table")
	}
	return nil
}
