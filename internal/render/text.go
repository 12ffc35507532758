package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salaryboard/internal/models"
)

var printer = message.NewPrinter(language.English)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// Money formats a salary in whole dollars with thousands separators.
func Money(v float64) string {
	return printer.Sprintf("$%d", int64(v))
}

// Millions formats a percentile value; missing values print as "-".
func Millions(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// PercentileTable renders the per-year percentile table for a terminal.
func PercentileTable(d *models.Dashboard) string {
	headers := []string{"year", "n"}
	for _, lvl := range d.Levels {
		headers = append(headers, fmt.Sprintf("p%d", lvl))
	}

	rows := make([][]string, 0, len(d.Percentiles))
	for _, pr := range d.Percentiles {
		row := []string{strconv.Itoa(pr.Year), strconv.Itoa(pr.Count)}
		for i := range d.Levels {
			row = append(row, Millions(pr.Value(i)))
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return numberStyle
		}).
		String()
}

// TopColumns returns the columns of the highest-salaries table in file
// order. Dashboards without a recorded order get year, pos, salary
// followed by any extra fields.
func TopColumns(d *models.Dashboard) []string {
	if len(d.Columns) > 0 {
		return d.Columns
	}
	cols := models.DefaultColumns()
	if len(d.Top) > 0 {
		for _, f := range d.Top[0].Extra {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// TopRows lays the highest salaries out as display cells, one slice per
// row in TopColumns order. Salaries are formatted with Money.
func TopRows(d *models.Dashboard) [][]string {
	cols := TopColumns(d)
	rows := make([][]string, 0, len(d.Top))
	for _, ts := range d.Top {
		row := make([]string, len(cols))
		for i, c := range cols {
			if c == models.ColumnSalary {
				row[i] = Money(ts.Salary)
				continue
			}
			row[i], _ = ts.Cell(c)
		}
		rows = append(rows, row)
	}
	return rows
}

// TopTable renders the highest-salaries table, including any extra
// columns the data file carried.
func TopTable(d *models.Dashboard) string {
	cols := TopColumns(d)
	headers := append([]string{"#"}, cols...)
	salaryCol := -1
	for i, c := range cols {
		if c == models.ColumnSalary {
			salaryCol = i + 1
		}
	}

	rows := make([][]string, 0, len(d.Top))
	for i, cells := range TopRows(d) {
		rows = append(rows, append([]string{strconv.Itoa(d.Top[i].Rank)}, cells...))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == salaryCol:
				return numberStyle
			}
			return cellStyle
		}).
		String()
}

// WriteReport prints the complete dashboard as text.
func WriteReport(w io.Writer, d *models.Dashboard) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n%s\n",
		titleStyle.Render(d.Title),
		PercentileTable(d),
		titleStyle.Render(d.Heading),
		TopTable(d),
	)
	return err
}
