package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"salaryboard/internal/config"
	"salaryboard/internal/engine"
	"salaryboard/internal/models"
	"salaryboard/internal/render"
)

type Handler struct {
	store atomic.Pointer[engine.ColumnStore]
	chart config.Chart
	log   zerolog.Logger
}

// NewHandler returns a handler serving store. A nil store is allowed: the
// API then answers 503 until SetData is called.
func NewHandler(store *engine.ColumnStore, chart config.Chart, log zerolog.Logger) *Handler {
	h := &Handler{chart: chart, log: log}
	if store != nil {
		h.store.Store(store)
	}
	return h
}

// SetData publishes the loaded table to the live API.
func (h *Handler) SetData(store *engine.ColumnStore) {
	h.store.Store(store)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Renderer = pageRenderer
	e.GET("/", h.GetPage)
	e.GET("/healthz", h.GetHealth)

	api := e.Group("/api")
	api.GET("/positions", h.GetPositions)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/percentiles", h.GetPercentiles)
	api.GET("/percentiles.arrow", h.GetPercentilesArrow)
	api.GET("/top", h.GetTop)
	api.GET("/chart.png", h.GetChart(render.PNG))
	api.GET("/chart.svg", h.GetChart(render.SVG))
}

// --- HELPERS ---

var errLoading = echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// selectionQuery encodes a selection as the query string the API accepts.
func selectionQuery(sel models.Selection) string {
	q := url.Values{}
	q.Set("min_year", strconv.Itoa(sel.MinYear))
	q.Set("max_year", strconv.Itoa(sel.MaxYear))
	q.Set("position", sel.Position)
	return q.Encode()
}

// dashboard runs the pipeline for the request's selection. The returned
// etag identifies the data file, the selection and the representation.
func (h *Handler) dashboard(c echo.Context, variant string) (*models.Dashboard, string, error) {
	store := h.store.Load()
	if store == nil {
		return nil, "", errLoading
	}

	sel, err := models.ParseSelection(c.QueryParam("min_year"), c.QueryParam("max_year"), c.QueryParam("position"))
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	data, err := engine.Compute(store, sel)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSelection) {
			return nil, "", echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		return nil, "", err
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.HashString(fmt.Sprintf("%x|%s|%s", store.Fingerprint, sel.Key(), variant)))
	return data, etag, nil
}

// notModified sets the ETag header and reports whether the client copy is current.
func notModified(c echo.Context, etag string) bool {
	c.Response().Header().Set("ETag", etag)
	return c.Request().Header.Get("If-None-Match") == etag
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	store := h.store.Load()
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "rows": store.Len()})
}

// positions, year domain and defaults for building controls
func (h *Handler) GetPositions(c echo.Context) error {
	def := models.DefaultSelection()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"positions": models.Positions(),
		"min_year":  models.MinYear,
		"max_year":  models.MaxYear,
		"default":   def,
	})
}

func (h *Handler) GetDashboard(c echo.Context) error {
	data, etag, err := h.dashboard(c, "dashboard")
	if err != nil {
		return err
	}
	if notModified(c, etag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) GetPercentiles(c echo.Context) error {
	data, etag, err := h.dashboard(c, "percentiles")
	if err != nil {
		return err
	}
	if notModified(c, etag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"levels": data.Levels,
		"data":   data.Percentiles,
	})
}

func (h *Handler) GetPercentilesArrow(c echo.Context) error {
	data, etag, err := h.dashboard(c, "arrow")
	if err != nil {
		return err
	}
	if notModified(c, etag) {
		return c.NoContent(http.StatusNotModified)
	}
	var buf bytes.Buffer
	if err := render.WriteArrow(&buf, data); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/vnd.apache.arrow.stream", buf.Bytes())
}

// returns the top 10 salaries, paged
func (h *Handler) GetTop(c echo.Context) error {
	data, _, err := h.dashboard(c, "top")
	if err != nil {
		return err
	}
	rows := data.Top
	total := len(rows)
	limit, offset := getPaginationParams(c, engine.TopCount)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data": []models.TopSalary{}, "total": total, "limit": limit, "offset": offset,
		})
	}
	end := min(offset+limit, total)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"heading": data.Heading,
		"data":    rows[offset:end],
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) GetChart(f render.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, etag, err := h.dashboard(c, "chart."+string(f))
		if err != nil {
			return err
		}
		if notModified(c, etag) {
			return c.NoContent(http.StatusNotModified)
		}
		var buf bytes.Buffer
		if err := render.WriteChart(&buf, data, h.chart.Width, h.chart.Height, f); err != nil {
			h.log.Error().Err(err).Str("selection", data.Selection.Key()).Msg("chart render failed")
			return err
		}
		return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
	}
}

func (h *Handler) GetPage(c echo.Context) error {
	data, _, err := h.dashboard(c, "page")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index.html", newPageData(data))
}
