package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salaryboard/internal/config"
	"salaryboard/internal/engine"
	"salaryboard/internal/models"
)

func testServer(store *engine.ColumnStore) (*echo.Echo, *Handler) {
	cfg := config.Default()
	cfg.Chart = config.Chart{Width: 400, Height: 500}
	h := NewHandler(store, cfg.Chart, zerolog.Nop())
	return NewServer(h, cfg, zerolog.Nop()), h
}

func exampleStore() *engine.ColumnStore {
	return engine.NewColumnStore([]models.Record{
		{Year: 2005, Position: "P", Salary: 500000},
		{Year: 2005, Position: "P", Salary: 1500000},
		{Year: 2006, Position: "P", Salary: 2000000},
	})
}

func get(e *echo.Echo, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoadingReturns503(t *testing.T) {
	e, h := testServer(nil)

	rec := get(e, "/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(e, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetData(exampleStore())
	rec = get(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":3`)
}

func TestGetDashboard(t *testing.T) {
	e, _ := testServer(exampleStore())

	rec := get(e, "/api/dashboard?min_year=2005&max_year=2006&position=Pitcher")
	require.Equal(t, http.StatusOK, rec.Code)

	var data models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 3, data.Matches)
	assert.Equal(t, "Salaries for Pitcher (3 players)", data.Title)
	require.Len(t, data.Percentiles, 2)
	assert.InDelta(t, 0.5, data.Percentiles[0].Values[0], 1e-12)
	assert.InDelta(t, 1.5, data.Percentiles[0].Values[10], 1e-12)
	require.Len(t, data.Top, 3)
	assert.Equal(t, 2000000.0, data.Top[0].Salary)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestGetDashboardNoMatches(t *testing.T) {
	e, _ := testServer(exampleStore())

	rec := get(e, "/api/percentiles?min_year=2005&max_year=2006&position=C")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"levels":[0,10,20,30,40,50,60,70,80,90,100],"data":[
		{"year":2005,"count":0,"values":null},
		{"year":2006,"count":0,"values":null}]}`, rec.Body.String())
}

func TestInvalidSelection(t *testing.T) {
	e, _ := testServer(exampleStore())

	for _, q := range []string{
		"min_year=1900",
		"min_year=2010&max_year=2001",
		"position=Goalkeeper",
		"max_year=soon",
	} {
		rec := get(e, "/api/dashboard?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestETag(t *testing.T) {
	e, _ := testServer(exampleStore())

	first := get(e, "/api/dashboard?min_year=2005&max_year=2006")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(e, "/api/dashboard?min_year=2005&max_year=2006")
	assert.Equal(t, etag, second.Header().Get("ETag"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	cached := get(e, "/api/dashboard?min_year=2005&max_year=2006", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	other := get(e, "/api/dashboard?min_year=2005&max_year=2007")
	assert.NotEqual(t, etag, other.Header().Get("ETag"))
}

func TestGetTopPaged(t *testing.T) {
	e, _ := testServer(exampleStore())

	rec := get(e, "/api/top?min_year=2005&max_year=2006&limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data  []models.TopSalary `json:"data"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Data, 2)
	assert.Equal(t, 1500000.0, body.Data[0].Salary)
	assert.Equal(t, 500000.0, body.Data[1].Salary)
}

func TestGetChartAndArrow(t *testing.T) {
	e, _ := testServer(exampleStore())

	rec := get(e, "/api/chart.png?min_year=2005&max_year=2006")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Greater(t, rec.Body.Len(), 0)

	rec = get(e, "/api/chart.svg?min_year=2005&max_year=2006&position=C")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = get(e, "/api/percentiles.arrow?min_year=2005&max_year=2006")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.apache.arrow.stream", rec.Header().Get(echo.HeaderContentType))
}

func TestGetPage(t *testing.T) {
	e, _ := testServer(exampleStore())

	rec := get(e, "/?min_year=2005&max_year=2006&position=P")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Highest salaries for Pitcher, 2005-2006")
	assert.Contains(t, body, "$2,000,000")
	assert.Contains(t, body, `<option value="P" selected>Pitcher</option>`)
	assert.Contains(t, body, "/api/chart.png?max_year=2006&amp;min_year=2005&amp;position=P")
}

func TestGetPositions(t *testing.T) {
	e, _ := testServer(nil)

	rec := get(e, "/api/positions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Positions []models.Position `json:"positions"`
		Default   models.Selection  `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Positions, 13)
	assert.Equal(t, models.DefaultSelection(), body.Default)
}

func TestGetPageColumnOrder(t *testing.T) {
	store := exampleStore()
	store.Columns = []string{"salary", "year", "pos"}
	e, _ := testServer(store)

	rec := get(e, "/?min_year=2005&max_year=2006&position=P")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<th></th><th>salary</th><th>year</th><th>pos</th>`)
	assert.Contains(t, rec.Body.String(), `<td>1</td><td class="num">$2,000,000</td><td>2006</td><td>P</td>`)
}
