package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "surveybench/internal/errors"
	"surveybench/internal/middleware"
	"surveybench/internal/services"
	"surveybench/pkg/contracts/domain"
)

// MappingHandler serves specialty mapping reads and mutations. Every
// successful mutation invalidates the benchmark cache and notifies the
// refresh hub through the service.
type MappingHandler struct {
	service      *services.MappingService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
}

// NewMappingHandler creates a new mapping handler.
func NewMappingHandler(service *services.MappingService, logger *slog.Logger) *MappingHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &MappingHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// RegisterRoutes registers the mapping routes.
func (h *MappingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/mappings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Save)
		r.Delete("/{id}", h.Delete)
		r.Post("/auto-map", h.AutoMap)
		r.Post("/corrections", h.Correct)
	})
}

// List returns every specialty mapping in insertion order.
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mappings, err := h.service.GetAllMappings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list mappings",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError("Failed to list mappings"))
		return
	}

	render.JSON(w, r, mappings)
}

// saveMappingRequest is the mapping upsert payload. A blank ID inserts.
type saveMappingRequest struct {
	ID                string                   `json:"id"`
	StandardizedName  string                   `json:"standardized_name" validate:"required"`
	SourceSpecialties []domain.SourceSpecialty `json:"source_specialties" validate:"dive"`
}

// Save inserts or updates a mapping.
func (h *MappingHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveMappingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	saved, err := h.service.SaveMapping(ctx, domain.SpecialtyMapping{
		ID:                req.ID,
		StandardizedName:  req.StandardizedName,
		SourceSpecialties: req.SourceSpecialties,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to save mapping",
			slog.String("standardized_name", req.StandardizedName),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Specialty mapping saved",
		slog.String("mapping_id", saved.ID),
		slog.String("standardized_name", saved.StandardizedName))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, saved)
}

// Delete removes a mapping by ID.
func (h *MappingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "mapping id required"))
		return
	}

	if err := h.service.DeleteMapping(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "Failed to delete mapping",
			slog.String("mapping_id", id),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Specialty mapping deleted",
		slog.String("mapping_id", id))

	render.NoContent(w, r)
}

// autoMapRequest is one auto-map batch.
type autoMapRequest struct {
	Items  []services.UnmappedSpecialty `json:"items" validate:"required,min=1,dive"`
	Config services.AutoMapConfig       `json:"config"`
}

// autoMapResponse summarizes a batch alongside the per-item results.
type autoMapResponse struct {
	Results []domain.MappingResult `json:"results"`
	Total   int                    `json:"total"`
	Matched int                    `json:"matched"`
	Failed  int                    `json:"failed"`
}

// AutoMap resolves a batch of unmapped specialties and folds the matches
// into their mappings. One item's failure never aborts siblings.
func (h *MappingHandler) AutoMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req autoMapRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	results, err := h.service.AutoMapSpecialties(ctx, req.Items, req.Config)
	if err != nil {
		h.logger.ErrorContext(ctx, "Auto-map batch failed",
			slog.Int("items", len(req.Items)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := autoMapResponse{Results: results, Total: len(results)}
	for _, res := range results {
		switch {
		case res.Err != "":
			resp.Failed++
		case res.Matched:
			resp.Matched++
		}
	}

	h.logger.InfoContext(ctx, "Auto-map batch completed",
		slog.Int("total", resp.Total),
		slog.Int("matched", resp.Matched),
		slog.Int("failed", resp.Failed))

	render.JSON(w, r, resp)
}

// correctionRequest records a user correction as a learned override.
type correctionRequest struct {
	OriginalName     string `json:"original_name" validate:"required"`
	StandardizedName string `json:"standardized_name" validate:"required"`
}

// Correct upserts a learned mapping consulted before fuzzy matching on
// future batches.
func (h *MappingHandler) Correct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req correctionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.service.CorrectMapping(ctx, req.OriginalName, req.StandardizedName); err != nil {
		h.logger.ErrorContext(ctx, "Failed to record mapping correction",
			slog.String("original_name", req.OriginalName),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Mapping correction recorded",
		slog.String("original_name", req.OriginalName),
		slog.String("standardized_name", req.StandardizedName))

	render.JSON(w, r, map[string]string{"status": "recorded"})
}
