package engine

import (
	"fmt"
	"math"
	"sort"

	"salaryboard/internal/models"
)

// TopCount is the number of rows in the highest-salaries table.
const TopCount = 10

// Levels are the percentile levels reported per year.
var Levels = []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

const millions = 1_000_000

// View is an order-preserving subset of a store's rows.
type View struct {
	store *ColumnStore
	Rows  []int
}

func (v View) Len() int {
	return len(v.Rows)
}

// Records materialises the view as typed records, in store order.
func (v View) Records() []models.Record {
	out := make([]models.Record, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = v.store.Record(r)
	}
	return out
}

// Filter selects the rows whose year lies in the selected range and whose
// position matches the selected code.
func (cs *ColumnStore) Filter(sel models.Selection) View {
	v := View{store: cs, Rows: make([]int, 0)}
	code := sel.Position
	if p, ok := models.PositionByCode(code); ok {
		code = p.Code
	}
	pid := cs.posID(code)
	if pid < 0 {
		return v
	}

	lo, hi := int32(sel.MinYear), int32(sel.MaxYear)
	years := cs.Years
	ids := cs.PosIDs
	for i := range years {
		if ids[i] == pid && years[i] >= lo && years[i] <= hi {
			v.Rows = append(v.Rows, i)
		}
	}
	return v
}

// Percentile returns the p-th percentile (0..100) of sorted values using
// linear interpolation at rank p/100*(n-1). It returns NaN for no values.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lerp(sorted[lo], sorted[hi], rank-float64(lo))
}

// lerp interpolates from the nearer endpoint so results never overshoot b.
func lerp(a, b, t float64) float64 {
	d := b - a
	if t >= 0.5 {
		return b - d*(1-t)
	}
	return a + d*t
}

// PercentileTable computes, for every year of the selection, the salary
// percentiles at each of Levels in millions. Years without rows get nil
// Values.
func (v View) PercentileTable(sel models.Selection) []models.PercentileRow {
	years := sel.Years()
	buckets := make([][]float64, len(years))
	for _, r := range v.Rows {
		idx := int(v.store.Years[r]) - sel.MinYear
		if idx >= 0 && idx < len(buckets) {
			buckets[idx] = append(buckets[idx], v.store.Salaries[r])
		}
	}

	rows := make([]models.PercentileRow, len(years))
	for i, year := range years {
		b := buckets[i]
		rows[i] = models.PercentileRow{Year: year, Count: len(b)}
		if len(b) == 0 {
			continue
		}
		sort.Float64s(b)
		vals := make([]float64, len(Levels))
		for k, lvl := range Levels {
			vals[k] = Percentile(b, float64(lvl)) / millions
		}
		rows[i].Values = vals
	}
	return rows
}

// Top returns the n highest salaries in the view, descending. Ties keep
// file order.
func (v View) Top(n int) []models.TopSalary {
	rows := make([]int, len(v.Rows))
	copy(rows, v.Rows)
	sal := v.store.Salaries
	sort.SliceStable(rows, func(i, j int) bool { return sal[rows[i]] > sal[rows[j]] })
	if len(rows) > n {
		rows = rows[:n]
	}

	out := make([]models.TopSalary, len(rows))
	for i, r := range rows {
		rec := v.store.Record(r)
		out[i] = models.TopSalary{
			Rank:     i + 1,
			Year:     rec.Year,
			Position: rec.Position,
			Salary:   rec.Salary,
			Extra:    v.store.Fields(r),
		}
	}
	return out
}

// Compute runs the full pipeline for one selection: filter, percentile
// table and top table. It is a pure function of the store and selection.
func Compute(cs *ColumnStore, sel models.Selection) (*models.Dashboard, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	pos, _ := models.PositionByCode(sel.Position)
	sel.Position = pos.Code

	view := cs.Filter(sel)
	label := sel.Label()

	levels := make([]int, len(Levels))
	copy(levels, Levels)

	columns := models.DefaultColumns()
	if len(cs.Columns) > 0 {
		columns = append([]string(nil), cs.Columns...)
	}

	return &models.Dashboard{
		Selection:   sel,
		Label:       label,
		Title:       fmt.Sprintf("Salaries for %s (%d players)", label, view.Len()),
		Heading:     fmt.Sprintf("Highest salaries for %s, %d-%d", label, sel.MinYear, sel.MaxYear),
		Matches:     view.Len(),
		Levels:      levels,
		Columns:     columns,
		Percentiles: view.PercentileTable(sel),
		Top:         view.Top(TopCount),
	}, nil
}
