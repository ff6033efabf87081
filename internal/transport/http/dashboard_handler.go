package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"orderlens/internal/dataprocessing"
	apierrors "orderlens/internal/errors"
	"orderlens/internal/exporter"
	"orderlens/internal/middleware"
	"orderlens/internal/services"
)

// DashboardHandler serves the order analytics endpoints. Every endpoint
// takes an optional from/to date pair; missing endpoints default to the
// dataset bounds.
type DashboardHandler struct {
	service      DashboardServiceInterface
	presenter    *dataprocessing.Presenter
	csv          *exporter.CSVWriter
	excel        *exporter.ExcelWriter
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// rangeQuery carries the raw from/to query parameters through validation.
type rangeQuery struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, presenter *dataprocessing.Presenter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		presenter:    presenter,
		csv:          exporter.NewCSVWriter(logger),
		excel:        exporter.NewExcelWriter(logger),
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/bounds", h.GetBounds)
	r.Get("/summary", h.GetSummary)
	r.Get("/daily-orders", h.GetDailyOrders)
	r.Get("/categories", h.GetCategories)
	r.Get("/rfm", h.GetRFM)

	r.Route("/customers/{dimension}", func(r chi.Router) {
		r.Use(h.DimensionCtx)
		r.Get("/", h.GetCustomers)
	})

	r.Get("/export/{format}", h.Export)

	return r
}

// DimensionCtx middleware validates the breakdown dimension parameter
func (h *DashboardHandler) DimensionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dimension := chi.URLParam(r, "dimension")
		switch dimension {
		case "state", "payment", "status":
			next.ServeHTTP(w, r)
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dimension",
				fmt.Sprintf("Unknown customer dimension: %s", dimension)))
		}
	})
}

// parseRange validates and parses the from/to query parameters. Zero
// times are returned for missing parameters; the service substitutes the
// dataset bounds.
func (h *DashboardHandler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := rangeQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	if err := h.validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]apierrors.ValidationError, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: "must use the YYYY-MM-DD format",
				})
			}
			return time.Time{}, time.Time{}, apierrors.NewValidationErrors(fields)
		}
		return time.Time{}, time.Time{}, apierrors.ErrValidation("from/to",
			"Dates must use the YYYY-MM-DD format")
	}

	var start, end time.Time
	var err error
	if q.From != "" {
		if start, err = time.Parse("2006-01-02", q.From); err != nil {
			return time.Time{}, time.Time{}, apierrors.ErrValidation("from", "Invalid date")
		}
	}
	if q.To != "" {
		if end, err = time.Parse("2006-01-02", q.To); err != nil {
			return time.Time{}, time.Time{}, apierrors.ErrValidation("to", "Invalid date")
		}
	}

	return start, end, nil
}

// snapshotForRequest parses the range and computes the snapshot, writing
// the error response itself on failure.
func (h *DashboardHandler) snapshotForRequest(w http.ResponseWriter, r *http.Request) (*services.DashboardSnapshot, bool) {
	start, end, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	snapshot, err := h.service.Snapshot(r.Context(), start, end)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return snapshot, true
}

// GetBounds handles GET /api/dashboard/bounds
func (h *DashboardHandler) GetBounds(w http.ResponseWriter, r *http.Request) {
	bounds := h.service.Bounds()

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   bounds,
	})
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "computing summary",
		slog.String("request_id", reqID),
		slog.String("query", r.URL.RawQuery),
	)

	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"range":  snapshot.Range,
		"data":   snapshot.Summary,
	})
}

// GetDailyOrders handles GET /api/dashboard/daily-orders.
// With fill=true the series covers every day of the range, zero rows
// included.
func (h *DashboardHandler) GetDailyOrders(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	fill, _ := strconv.ParseBool(r.URL.Query().Get("fill"))
	series := h.presenter.DailySeries(snapshot.Daily, fill, snapshot.Range.Start, snapshot.Range.End)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"range":  snapshot.Range,
		"data":   series,
		"count":  len(series),
	})
}

// GetCategories handles GET /api/dashboard/categories
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	highlights := snapshot.Highlights
	if limit > 0 {
		highlights = h.presenter.Categories(snapshot.Categories, limit)
	}

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"range":      snapshot.Range,
		"data":       snapshot.Categories,
		"highlights": highlights,
		"count":      len(snapshot.Categories),
	})
}

// GetCustomers handles GET /api/dashboard/customers/{dimension}
func (h *DashboardHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	var rows interface{}
	switch chi.URLParam(r, "dimension") {
	case "state":
		rows = snapshot.ByState
	case "payment":
		rows = snapshot.ByPayment
	case "status":
		rows = snapshot.ByStatus
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"range":  snapshot.Range,
		"data":   rows,
	})
}

// GetRFM handles GET /api/dashboard/rfm
func (h *DashboardHandler) GetRFM(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	leaders := snapshot.Leaders
	if limit > 0 {
		leaders = h.presenter.Leaderboards(snapshot.RFM, limit)
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"range":    snapshot.Range,
		"data":     snapshot.RFM,
		"averages": snapshot.RFMAverages,
		"leaders":  leaders,
		"count":    len(snapshot.RFM),
	})
}

// Export handles GET /api/dashboard/export/{format}, streaming the
// snapshot tables as csv or xlsx.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format",
			fmt.Sprintf("Unsupported export format: %s", format)))
		return
	}

	snapshot, ok := h.snapshotForRequest(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("orderlens_%s_%s.%s",
		snapshot.Range.Start.Format("20060102"),
		snapshot.Range.End.Format("20060102"),
		format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = h.csv.StreamSnapshot(w, snapshot)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.excel.StreamSnapshot(w, snapshot)
	}

	if err != nil {
		// Headers may already be sent; log rather than double-respond.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("format", format),
			slog.String("error", err.Error()),
		)
	}
}
