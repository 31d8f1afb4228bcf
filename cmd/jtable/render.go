package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/creachadair/jtable"
	"github.com/mattn/go-runewidth"
)

const noData = "No data to display"

// A grid is the laid-out text of a table model.
type grid struct {
	keys   []string   // column keys; "" is the unnamed column of mixed rows
	header []string   // header text, including the row-number column
	cells  [][]string // cell text by row, including the row-number column
	widths []int      // display width of each column
}

// cellReplacer makes multi-line values fit on one line.
var cellReplacer = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// layout computes the text and column widths for m. Nested values are shown
// as previews of at most previewWidth bytes, and if maxWidth > 0 no column is
// wider than maxWidth.
func layout(m *jtable.Model, previewWidth, maxWidth int) *grid {
	g := &grid{keys: append([]string(nil), m.Columns...)}
	if m.Mixed {
		g.keys = append(g.keys, "")
	}
	g.header = append([]string{"#"}, g.keys...)
	for i := range m.Rows {
		row := []string{strconv.Itoa(i)}
		for j, key := range g.keys {
			var text string
			unnamed := j >= len(m.Columns)
			if v, ok := m.Cell(i, key); ok && unnamed != m.Addressable(i) {
				text = cellReplacer.Replace(jtable.Preview(v, previewWidth))
			}
			row = append(row, text)
		}
		g.cells = append(g.cells, row)
	}

	g.widths = make([]int, len(g.header))
	measure := func(col int, s string) {
		if w := runewidth.StringWidth(s); w > g.widths[col] {
			g.widths[col] = w
		}
	}
	for i, h := range g.header {
		measure(i, h)
	}
	for _, row := range g.cells {
		for i, s := range row {
			measure(i, s)
		}
	}
	if maxWidth > 0 {
		for i, w := range g.widths {
			g.widths[i] = min(w, maxWidth)
		}
	}
	return g
}

// empty reports whether g has nothing to display.
func (g *grid) empty() bool { return len(g.cells) == 0 || len(g.keys) == 0 }

// fit pads or truncates s to exactly the width of column col.
func (g *grid) fit(col int, s string) string {
	w := g.widths[col]
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "...")
	}
	return runewidth.FillRight(s, w)
}

// A styleFunc renders the fitted text of a body cell, where key is the column
// key of the cell. The header and row-number column are not styled.
type styleFunc func(row int, key, text string) string

// writeRows writes the header and rows [lo, hi) of g to w. If style != nil, it
// is applied to each cell after fitting.
func (g *grid) writeRows(w io.Writer, lo, hi int, style styleFunc) error {
	var sb strings.Builder
	line := func(row int, texts []string) {
		parts := make([]string, len(texts))
		for i, s := range texts {
			s = g.fit(i, s)
			if style != nil && i > 0 && row >= 0 {
				s = style(row, g.keys[i-1], s)
			}
			parts[i] = s
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteByte('\n')
	}
	line(-1, g.header)
	sep := make([]string, len(g.widths))
	for i, w := range g.widths {
		sep[i] = strings.Repeat("-", w)
	}
	line(-1, sep)
	for i := max(lo, 0); i < hi && i < len(g.cells); i++ {
		line(i, g.cells[i])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

var matchStyle = lipgloss.NewStyle().Reverse(true)

// renderTable writes the table for m to w. Cells whose text contains search
// are highlighted if color is true.
func renderTable(w io.Writer, m *jtable.Model, cfg Config, search string, color bool) error {
	g := layout(m, cfg.PreviewWidth, cfg.MaxColumnWidth)
	if g.empty() {
		_, err := io.WriteString(w, noData+"\n")
		return err
	}
	var style styleFunc
	if color && search != "" {
		hits := make(map[jtable.Coord]bool)
		for _, c := range m.Search(search) {
			hits[c] = true
		}
		style = func(row int, key, text string) string {
			if hits[jtable.Coord{Row: row, Key: key}] {
				return matchStyle.Render(text)
			}
			return text
		}
	}
	return g.writeRows(w, 0, len(g.cells), style)
}
