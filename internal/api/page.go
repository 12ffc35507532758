package api

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"salaryboard/internal/models"
	"salaryboard/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

var pageRenderer = &templateRenderer{
	templates: template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
}

type pageData struct {
	Dashboard  *models.Dashboard
	Positions  []models.Position
	YearMin    int
	YearMax    int
	Columns    []string
	Rows       []pageRow
	Query      template.URL
}

type pageRow struct {
	Rank  int
	Cells []pageCell
}

type pageCell struct {
	Value   string
	Numeric bool
}

func newPageData(d *models.Dashboard) pageData {
	pd := pageData{
		Dashboard: d,
		Positions: models.Positions(),
		YearMin:   models.MinYear,
		YearMax:   models.MaxYear,
		Query:     template.URL(selectionQuery(d.Selection)),
	}
	pd.Columns = render.TopColumns(d)
	for i, cells := range render.TopRows(d) {
		row := pageRow{Rank: d.Top[i].Rank, Cells: make([]pageCell, len(cells))}
		for k, v := range cells {
			row.Cells[k] = pageCell{Value: v, Numeric: pd.Columns[k] == models.ColumnSalary}
		}
		pd.Rows = append(pd.Rows, row)
	}
	return pd
}
