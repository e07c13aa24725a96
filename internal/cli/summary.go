package cli

import (
	"cmp"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/surfviz/pkg/pipeline"
)

// meshTable renders one row per converted overlay.
func meshTable(runs []pipeline.Options, results []*pipeline.MeshResult) string {
	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{
			runs[i].BaseName(),
			cmp.Or(runs[i].Hemisphere, "—"),
			strconv.Itoa(res.Stats.VertexCount),
			strconv.Itoa(res.Stats.FaceCount),
			cacheStatus(res.CacheInfo.ArtifactHit),
			res.Stats.ExportTime.Round(time.Millisecond).String(),
		}
	}
	return summaryTable([]string{"Overlay", "Hemi", "Vertices", "Faces", "Status", "Export"}, rows)
}

// projectionTable renders one row per projection image.
func projectionTable(runs []pipeline.Options, results []*pipeline.ProjectionResult) string {
	rows := make([][]string, len(results))
	for i, res := range results {
		source := res.TablePath
		if source == "" {
			source = runs[i].Sphere
		}
		rows[i] = []string{
			runs[i].BaseName(),
			cmp.Or(runs[i].Hemisphere, "—"),
			strconv.Itoa(res.Stats.VertexCount),
			source,
			cacheStatus(res.CacheInfo.ArtifactHit),
			res.Stats.ExportTime.Round(time.Millisecond).String(),
		}
	}
	return summaryTable([]string{"Overlay", "Hemi", "Points", "Projection", "Status", "Render"}, rows)
}

func cacheStatus(hit bool) string {
	if hit {
		return iconCached
	}
	return iconFresh
}

func summaryTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	statusCol := len(headers) - 2

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorWhite)
			case col == statusCol:
				if rows[row][col] == iconCached {
					return styleCached.Padding(0, 1)
				}
				return styleComputed.Padding(0, 1)
			case isNumber(rows[row][col]):
				return StyleNumber.Padding(0, 1)
			}
			return base.Foreground(colorGray)
		})
	return t.Render()
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
