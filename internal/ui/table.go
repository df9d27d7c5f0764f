package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = NewStyle("#626262")
)

// Table renders rows under headers as a bordered table. Rows shorter than headers are padded with empty cells.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.HeaderStyle()
			}
			return cellStyle
		})

	for _, row := range rows {
		padded := make([]string, len(headers))
		copy(padded, row)
		t.Row(padded...)
	}

	return t.Render()
}
