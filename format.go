package sqlitekit

import "strings"

// ResultTable is an ordered list of rows of Values — the shape every SQL
// command and dot-command result boils down to, per spec.md §4.8.
type ResultTable struct {
	Rows [][]Value
}

// Renderer formats a ResultTable for display. Grounded on the teacher's
// OutputFormatter/ConsoleFormatter split in formatter.go, narrowed to the
// one rendering spec.md actually specifies (`|`-joined values, newline-
// joined rows) rather than carrying the teacher's unused tab-joined/JSON
// variants — see DESIGN.md.
type Renderer interface {
	Render(t *ResultTable) string
}

type TextRenderer struct{}

func (TextRenderer) Render(t *ResultTable) string {
	lines := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatValue(v)
		}
		lines[i] = strings.Join(cells, "|")
	}
	return strings.Join(lines, "\n")
}

// formatValue implements spec.md §4.8's per-type display rules: NULL ->
// "null", Integer -> decimal, Real -> shortest round-trip decimal, Text ->
// unquoted, Blob -> hex.
func formatValue(v Value) string {
	return v.String()
}
