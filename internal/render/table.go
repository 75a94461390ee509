package render

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Table accumulates rows until it is printed. Rows are kept in the order
// they were appended.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// Append adds one row. Short rows are padded with empty cells.
func (t *Table) Append(cells ...string) {
	row := make([]string, max(len(cells), len(t.headers)))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) render(th Theme) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(th.Border).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.Header
			}
			return th.Cell
		}).
		String()
}
