package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnsim/internal/ui/theme"
)

// Table renders aligned columns with a styled header and rule.
type Table struct {
	Headers []string

	// Right marks columns that are right-aligned, such as counts.
	Right map[int]bool

	rows [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Right: map[int]bool{}}
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.Right[c] = true
	}
	return t
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// View renders the table.
func (t *Table) View() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(t.line(t.Headers, widths, theme.TableHeader))
	b.WriteByte('\n')

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * max(len(widths)-1, 0)
	b.WriteString(theme.TableRule.Render(strings.Repeat("─", total)))

	for _, row := range t.rows {
		b.WriteByte('\n')
		b.WriteString(t.line(row, widths, theme.TableCell))
	}
	return b.String()
}

func (t *Table) line(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		if t.Right[i] {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	return style.Render(strings.Join(parts, "  "))
}
