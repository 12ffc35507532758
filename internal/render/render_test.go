package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salaryboard/internal/models"
)

func sampleDashboard() *models.Dashboard {
	return &models.Dashboard{
		Selection: models.Selection{MinYear: 2005, MaxYear: 2007, Position: "P"},
		Label:     "Pitcher",
		Title:     "Salaries for Pitcher (3 players)",
		Heading:   "Highest salaries for Pitcher, 2005-2007",
		Matches:   3,
		Levels:    []int{0, 50, 100},
		Percentiles: []models.PercentileRow{
			{Year: 2005, Count: 2, Values: []float64{0.5, 1.0, 1.5}},
			{Year: 2006, Count: 0},
			{Year: 2007, Count: 1, Values: []float64{2.0, 2.0, 2.0}},
		},
		Top: []models.TopSalary{
			{Rank: 1, Year: 2007, Position: "P", Salary: 2000000, Extra: []models.Field{{Name: "player", Value: "ace01"}}},
			{Rank: 2, Year: 2005, Position: "P", Salary: 1500000, Extra: []models.Field{{Name: "player", Value: "arm02"}}},
			{Rank: 3, Year: 2005, Position: "P", Salary: 500000, Extra: []models.Field{{Name: "player", Value: "pen03"}}},
		},
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,500,000", Money(1500000))
	assert.Equal(t, "$0", Money(0))
}

func TestLevelSeriesGaps(t *testing.T) {
	d := sampleDashboard()
	runs := levelSeries(d.Percentiles, 0)
	require.Len(t, runs, 2)
	assert.Equal(t, []float64{2005}, runs[0][0])
	assert.Equal(t, []float64{0.5}, runs[0][1])
	assert.Equal(t, []float64{2007}, runs[1][0])
}

func TestChartLayout(t *testing.T) {
	ch := Chart(sampleDashboard(), 800, 1000)
	assert.Equal(t, "Salaries for Pitcher (3 players)", ch.Title)
	assert.Len(t, ch.Series, 3)
	require.Len(t, ch.XAxis.Ticks, 3)
	assert.Equal(t, "2006", ch.XAxis.Ticks[1].Label)
	assert.Equal(t, "50", ch.Series[1].GetName())
}

func TestWriteChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, sampleDashboard(), 400, 500, PNG))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestWriteChartEmpty(t *testing.T) {
	d := sampleDashboard()
	for i := range d.Percentiles {
		d.Percentiles[i] = models.PercentileRow{Year: d.Percentiles[i].Year}
	}
	d.Top = nil

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, d, 400, 500, SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestWriteArrow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, sampleDashboard()))

	rdr, err := ipc.NewReader(&buf, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer rdr.Release()

	require.True(t, rdr.Next())
	rec := rdr.Record()
	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, 5, int(rec.NumCols()))
	assert.Equal(t, "p50", rec.ColumnName(3))
	assert.Equal(t, arrow.PrimitiveTypes.Float64.ID(), rec.Column(3).DataType().ID())

	p0 := rec.Column(2).(*array.Float64)
	assert.Equal(t, 0.5, p0.Value(0))
	assert.True(t, p0.IsNull(1))
	assert.Equal(t, 2.0, p0.Value(2))
}

func TestReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleDashboard()))

	out := buf.String()
	assert.Contains(t, out, "Highest salaries for Pitcher, 2005-2007")
	assert.Contains(t, out, "$2,000,000")
	assert.Contains(t, out, "ace01")
	assert.True(t, strings.Index(out, "ace01") < strings.Index(out, "pen03"))
}

func TestTopTableFollowsColumnOrder(t *testing.T) {
	d := sampleDashboard()
	d.Columns = []string{"player", "salary", "year", "pos"}

	rows := TopRows(d)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ace01", "$2,000,000", "2007", "P"}, rows[0])

	out := TopTable(d)
	assert.Less(t, strings.Index(out, "player"), strings.Index(out, "salary"))
	assert.Less(t, strings.Index(out, "salary"), strings.Index(out, "year"))
}

func TestTopColumnsDefault(t *testing.T) {
	assert.Equal(t, []string{"year", "pos", "salary", "player"}, TopColumns(sampleDashboard()))
}
