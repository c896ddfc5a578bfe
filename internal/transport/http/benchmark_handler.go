package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "surveybench/internal/errors"
	"surveybench/internal/exporter"
	"surveybench/internal/infrastructure"
	"surveybench/internal/middleware"
	"surveybench/internal/services"
	"surveybench/pkg/contracts/domain"
)

// RefreshBroadcaster pushes dataset refresh events to connected clients.
// Implemented by the websocket hub; nil disables broadcasting.
type RefreshBroadcaster interface {
	BroadcastRefresh(source string, components []string)
}

// BenchmarkHandler serves the benchmark operations: filter values, market
// data, user percentile rank, specialty blending, and report export.
type BenchmarkHandler struct {
	service      *services.BenchmarkService
	exporter     *exporter.Exporter
	broadcaster  RefreshBroadcaster
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
}

// NewBenchmarkHandler creates a new benchmark handler. Broadcaster and
// metrics may be nil.
func NewBenchmarkHandler(service *services.BenchmarkService, exp *exporter.Exporter, broadcaster RefreshBroadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *BenchmarkHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &BenchmarkHandler{
		service:      service,
		exporter:     exp,
		broadcaster:  broadcaster,
		metrics:      metrics,
		logger:       logger,
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// RegisterRoutes registers the benchmark routes.
func (h *BenchmarkHandler) RegisterRoutes(r chi.Router) {
	r.Route("/benchmark", func(r chi.Router) {
		r.Post("/filters", h.GetFilterValues)
		r.Post("/market-data", h.GetMarketData)
		r.Post("/percentile", h.GetUserPercentile)
		r.Post("/blend", h.GetBlendedMarketData)
		r.Post("/export", h.Export)
		r.Post("/refresh", h.Refresh)
	})
}

// filtersRequest wraps the shared filter state carried by most benchmark
// operations.
type filtersRequest struct {
	Filters domain.Filters `json:"filters"`
}

// GetFilterValues returns the available values per filter dimension under
// the current selections.
func (h *BenchmarkHandler) GetFilterValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req filtersRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req.Filters); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	options, err := h.service.GetUniqueFilterValues(ctx, req.Filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to derive filter values",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
		return
	}

	render.JSON(w, r, options)
}

// GetMarketData returns the aggregated market percentiles for the filtered
// rows. Zero matching rows is a valid empty state, not an error.
func (h *BenchmarkHandler) GetMarketData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req filtersRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req.Filters); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	market, err := h.service.GetMarketData(ctx, req.Filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to compute market data",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
		return
	}

	render.JSON(w, r, market)
}

// GetUserPercentile returns the percentile rank of the user's value against
// the filtered market. A nil percentile in the result means no market data
// matched.
func (h *BenchmarkHandler) GetUserPercentile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.PercentileRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.GetUserPercentile(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to compute user percentile",
			slog.String("metric", string(req.Metric)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
		return
	}

	h.metrics.RecordPercentileLookup(ctx, req.Metric, result.Percentile != nil)

	render.JSON(w, r, result)
}

// blendRequest combines per-specialty markets under shared filters.
type blendRequest struct {
	Filters     domain.Filters        `json:"filters"`
	Specialties []services.BlendInput `json:"specialties" validate:"required,min=1,dive"`
}

// GetBlendedMarketData returns a weight-combined market across specialties.
func (h *BenchmarkHandler) GetBlendedMarketData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req blendRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	market, err := h.service.GetBlendedMarketData(ctx, req.Filters, req.Specialties)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to blend market data",
			slog.Int("specialties", len(req.Specialties)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
		return
	}

	render.JSON(w, r, market)
}

// exportContentTypes maps export formats to response content types.
var exportContentTypes = map[string]string{
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":  "text/csv; charset=utf-8",
}

// Export streams a downloadable benchmark report. The format query parameter
// selects xlsx (default) or csv.
func (h *BenchmarkHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "must be xlsx or csv"))
		return
	}

	var req filtersRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req.Filters); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, market, err := h.service.ExportDataset(ctx, req.Filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build export dataset",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.ReportFilename(format, now)+`"`)

	switch format {
	case "csv":
		err = h.exporter.WriteCSV(w, rows, exporter.CSVOptions{BOMPrefix: true})
	default:
		err = h.exporter.WriteXLSX(w, exporter.Report{
			Filters:     req.Filters,
			Market:      market,
			Rows:        rows,
			GeneratedAt: now,
		})
	}
	if err != nil {
		// Headers are already out; the broken download is all the client sees.
		h.logger.ErrorContext(ctx, "Report export failed mid-stream",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// Refresh drops the cached dataset and tells connected clients to re-fetch.
// The next read reloads from the store.
func (h *BenchmarkHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.service.Invalidate()
	if h.broadcaster != nil {
		h.broadcaster.BroadcastRefresh("api", []string{"filters", "market-data"})
	}

	h.logger.InfoContext(ctx, "Benchmark dataset refresh requested")
	render.JSON(w, r, map[string]string{"status": "refreshing"})
}
