package render

import (
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"salaryboard/internal/models"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat maps a file extension or name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", ".png", "":
		return PNG, nil
	case "svg", ".svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// gappedSeries is a line series that leaves a gap wherever a year has no
// value. Each contiguous run is drawn as its own line.
type gappedSeries struct {
	Name  string
	Style chart.Style
	runs  []chart.ContinuousSeries
}

func (gs gappedSeries) GetName() string { return gs.Name }
func (gs gappedSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (gs gappedSeries) GetStyle() chart.Style { return gs.Style }
func (gs gappedSeries) Validate() error { return nil }
func (gs gappedSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	for _, run := range gs.runs {
		run.Style = gs.Style
		run.Render(r, canvasBox, xrange, yrange, defaults)
	}
}

// levelSeries splits one percentile level into runs of defined values.
func levelSeries(rows []models.PercentileRow, level int) [][2][]float64 {
	var runs [][2][]float64
	var xs, ys []float64
	flush := func() {
		if len(xs) > 0 {
			runs = append(runs, [2][]float64{xs, ys})
			xs, ys = nil, nil
		}
	}
	for _, row := range rows {
		v, ok := row.Value(level)
		if !ok {
			flush()
			continue
		}
		xs = append(xs, float64(row.Year))
		ys = append(ys, v)
	}
	flush()
	return runs
}

// Chart builds the percentile line chart for a dashboard: one line per
// level, a tick for every year, y in millions of dollars.
func Chart(d *models.Dashboard, width, height int) chart.Chart {
	sel := d.Selection

	ticks := make([]chart.Tick, 0, sel.MaxYear-sel.MinYear+1)
	for _, y := range sel.Years() {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}

	yMax := 0.0
	series := make([]chart.Series, 0, len(d.Levels))
	for i, lvl := range d.Levels {
		gs := gappedSeries{
			Name:  strconv.Itoa(lvl),
			Style: chart.Style{StrokeWidth: 2, DotWidth: 3},
		}
		for _, run := range levelSeries(d.Percentiles, i) {
			gs.runs = append(gs.runs, chart.ContinuousSeries{XValues: run[0], YValues: run[1]})
			for _, v := range run[1] {
				yMax = max(yMax, v)
			}
		}
		series = append(series, gs)
	}
	if yMax == 0 {
		yMax = 1
	} else {
		yMax *= 1.05
	}

	ch := chart.Chart{
		Title:      d.Title,
		TitleStyle: chart.Style{FontSize: 20},
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 60, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: float64(sel.MinYear) - 0.5, Max: float64(sel.MaxYear) + 0.5},
			Style: chart.Style{TextRotationDegrees: 90},
		},
		YAxis: chart.YAxis{
			Name:      "Salary percentiles in $1M",
			NameStyle: chart.Style{FontSize: 14},
			Range:     &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.FormatFloat(f, 'f', 1, 64)
				}
				return ""
			},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.LegendLeft(&ch)}
	return ch
}

// WriteChart renders the dashboard chart to w.
func WriteChart(w io.Writer, d *models.Dashboard, width, height int, f Format) error {
	ch := Chart(d, width, height)
	provider := chart.PNG
	if f == SVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
