package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"wagedash/internal/export"
	"wagedash/internal/models"
	"wagedash/internal/views"
)

// Handler serves the views. It is live before the datasets are loaded and
// answers 503 until SetData publishes them.
type Handler struct {
	assembler *views.Assembler
	data      atomic.Pointer[views.Datasets]
	metrics   http.Handler
	logger    *slog.Logger
}

// NewHandler creates a handler. metrics may be nil to leave /metrics out.
func NewHandler(assembler *views.Assembler, metrics http.Handler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{assembler: assembler, metrics: metrics, logger: logger}
}

// SetData publishes the loaded datasets.
func (h *Handler) SetData(data *views.Datasets) {
	h.data.Store(data)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.metrics))
	}

	api := e.Group("/api", h.requireData)
	api.GET("/views", h.GetAllViews)
	api.GET("/views/:kind", h.GetView)
	api.POST("/views/:kind", h.PostView)
	api.GET("/options", h.GetOptions)
}

func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.data.Load() == nil {
			return ErrLoading
		}
		return next(c)
	}
}

// --- HANDLERS ---

// selectionFromQuery reads year, region, metric and age. Missing values stay
// zero so the assembler picks its defaults.
func selectionFromQuery(c echo.Context) (views.Selection, error) {
	sel := views.Selection{
		Region: c.QueryParam("region"),
		Metric: c.QueryParam("metric"),
		Age:    c.QueryParam("age"),
	}
	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return sel, fmt.Errorf("%w: year %q is not a number", views.ErrSelection, raw)
		}
		sel.Year = year
	}
	return sel, nil
}

func parseFormat(c echo.Context) (string, error) {
	switch f := c.QueryParam("format"); f {
	case "":
		return "json", nil
	case "json", "arrow", "text", "csv":
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, f)
	}
}

// GetView computes one view from query parameters.
func (h *Handler) GetView(c echo.Context) error {
	sel, err := selectionFromQuery(c)
	if err != nil {
		return err
	}
	return h.serveView(c, sel)
}

// PostView computes one view from a JSON selection body.
func (h *Handler) PostView(c echo.Context) error {
	var sel views.Selection
	if err := c.Bind(&sel); err != nil {
		return err
	}
	return h.serveView(c, sel)
}

func (h *Handler) serveView(c echo.Context, sel views.Selection) error {
	kind, err := views.ParseKind(c.Param("kind"))
	if err != nil {
		return err
	}
	format, err := parseFormat(c)
	if err != nil {
		return err
	}

	res, err := h.assembler.Compute(kind, h.data.Load(), sel)
	if err != nil {
		return err
	}
	return render(c, res, format)
}

func render(c echo.Context, res *views.Result, format string) error {
	var buf bytes.Buffer
	switch format {
	case "arrow":
		if err := export.WriteArrow(&buf, res.Table); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, export.ArrowMIME, buf.Bytes())
	case "text":
		if err := export.WriteText(&buf, res.Table); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
	case "csv":
		if err := export.WriteCSV(&buf, res.Table, true); err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", string(res.View)+".csv"))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
	return c.JSON(http.StatusOK, models.NewViewResponse(res))
}

// GetAllViews computes every view for one selection. A failing view is
// reported in its entry and does not fail the request.
func (h *Handler) GetAllViews(c echo.Context) error {
	sel, err := selectionFromQuery(c)
	if err != nil {
		return err
	}

	outcomes := h.assembler.ComputeAll(h.data.Load(), sel)
	resp := models.AllViewsResponse{Selection: sel, Views: make([]models.ViewStatus, 0, len(outcomes))}
	for _, o := range outcomes {
		status := models.ViewStatus{View: o.View, OK: o.Err == nil}
		if o.Err != nil {
			_, body := apiError(o.Err)
			status.Error = &body
		} else {
			vr := models.NewViewResponse(o.Result)
			status.Result = &vr
		}
		resp.Views = append(resp.Views, status)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetOptions lists the values a client can select.
func (h *Handler) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.assembler.Options(h.data.Load()))
}

// Health reports readiness and per-dataset load status.
func (h *Handler) Health(c echo.Context) error {
	data := h.data.Load()
	if data == nil {
		return c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "loading"})
	}

	resp := models.HealthResponse{Status: "ok", Datasets: map[string]models.DatasetStatus{}}
	for name, rows := range data.Rows() {
		resp.Datasets[string(name)] = models.DatasetStatus{Rows: rows}
	}
	for name, err := range data.Errors() {
		resp.Status = "degraded"
		resp.Datasets[string(name)] = models.DatasetStatus{Error: err.Error()}
	}
	return c.JSON(http.StatusOK, resp)
}
