package models

import "strconv"

// Record is one salary row as handed out by the store.
type Record struct {
	Year     int     `json:"year"`
	Position string  `json:"pos"`
	Salary   float64 `json:"salary"`
}

// Field is an extra named column carried along with a record (player, team...).
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Names of the required columns.
const (
	ColumnYear   = "year"
	ColumnPos    = "pos"
	ColumnSalary = "salary"
)

// DefaultColumns is the column order used when the source carries no others.
func DefaultColumns() []string {
	return []string{ColumnYear, ColumnPos, ColumnSalary}
}

type Dashboard struct {
	Selection   Selection       `json:"selection"`
	Label       string          `json:"position_label"`
	Title       string          `json:"title"`
	Heading     string          `json:"heading"`
	Matches     int             `json:"matches"`
	Levels      []int           `json:"levels"`
	Columns     []string        `json:"columns"`
	Percentiles []PercentileRow `json:"percentiles"`
	Top         []TopSalary     `json:"top"`
}

// PercentileRow holds the salary percentiles (in millions) for one year.
// Values is nil when no record matched that year.
type PercentileRow struct {
	Year   int       `json:"year"`
	Count  int       `json:"count"`
	Values []float64 `json:"values"`
}

// Value returns the percentile at level index i and whether it is defined.
func (r PercentileRow) Value(i int) (float64, bool) {
	if r.Values == nil || i < 0 || i >= len(r.Values) {
		return 0, false
	}
	return r.Values[i], true
}

type TopSalary struct {
	Rank     int     `json:"rank"`
	Year     int     `json:"year"`
	Position string  `json:"pos"`
	Salary   float64 `json:"salary"`
	Extra    []Field `json:"extra,omitempty"`
}

// Cell returns the value of the named column for this row. Salary is
// returned unformatted; ok is false for unknown columns.
func (t TopSalary) Cell(column string) (string, bool) {
	switch column {
	case ColumnYear:
		return strconv.Itoa(t.Year), true
	case ColumnPos:
		return t.Position, true
	case ColumnSalary:
		return strconv.FormatFloat(t.Salary, 'f', -1, 64), true
	}
	for _, f := range t.Extra {
		if f.Name == column {
			return f.Value, true
		}
	}
	return "", false
}
