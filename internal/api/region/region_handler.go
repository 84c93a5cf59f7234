package region

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-household-registry/internal/api"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewRegionHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// CreateRegion handles POST /cities/{cityID}/regions
func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RegionHandler").Start(r.Context(), "CreateRegion")
	defer span.End()

	l := h.logger.With(slog.String("method", "CreateRegion"))

	cityID, err := uuid.Parse(chi.URLParam(r, "cityID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid city ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID")
		return
	}

	var req types.CreateRegionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Region name is required")
		return
	}

	region, err := h.service.CreateRegion(ctx, cityID, req.Name)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create region", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Region created")
	api.WriteJSONResponse(w, r, http.StatusCreated, region)
}

// ListRegions handles GET /cities/{cityID}/regions
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RegionHandler").Start(r.Context(), "ListRegions")
	defer span.End()

	l := h.logger.With(slog.String("method", "ListRegions"))

	cityID, err := uuid.Parse(chi.URLParam(r, "cityID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid city ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID")
		return
	}

	summaries, err := h.service.ListRegions(ctx, cityID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list regions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list regions")
		return
	}
	if summaries == nil {
		summaries = []types.RegionSummary{}
	}

	span.SetStatus(codes.Ok, "Regions listed")
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// AssignRegion handles POST /regions/{regionID}/assign
func (h *Handler) AssignRegion(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RegionHandler").Start(r.Context(), "AssignRegion")
	defer span.End()

	l := h.logger.With(slog.String("method", "AssignRegion"))

	regionID, err := uuid.Parse(chi.URLParam(r, "regionID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid region ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid region ID")
		return
	}

	var req types.AssignRegionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.AssignRegion(ctx, regionID, req.NeighborhoodIDs); err != nil {
		l.ErrorContext(ctx, "Failed to assign region", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Region assigned")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// UpdateNeighborhoodsRegion handles PUT /neighborhoods/region
func (h *Handler) UpdateNeighborhoodsRegion(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RegionHandler").Start(r.Context(), "UpdateNeighborhoodsRegion")
	defer span.End()

	l := h.logger.With(slog.String("method", "UpdateNeighborhoodsRegion"))

	var req types.UpdateNeighborhoodsRegionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NeighborhoodIDs) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "At least one neighborhood ID is required")
		return
	}

	if err := h.service.UpdateNeighborhoodsRegion(ctx, req.NeighborhoodIDs, req.RegionID, req.RegionName); err != nil {
		l.ErrorContext(ctx, "Failed to update neighborhood regions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Neighborhood regions updated")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// MergeNeighborhoods handles POST /neighborhoods/merge
func (h *Handler) MergeNeighborhoods(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RegionHandler").Start(r.Context(), "MergeNeighborhoods")
	defer span.End()

	l := h.logger.With(slog.String("method", "MergeNeighborhoods"))

	var req types.MergeNeighborhoodsRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.SurvivorID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Survivor neighborhood ID is required")
		return
	}

	survivor, repointed, err := h.service.MergeNeighborhoods(ctx, req.SurvivorID, req.DuplicateIDs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to merge neighborhoods", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	l.InfoContext(ctx, "Neighborhoods merged",
		slog.String("survivor_id", survivor.ID.String()),
		slog.Int64("repointed_addresses", repointed),
	)
	span.SetStatus(codes.Ok, "Neighborhoods merged")
	api.WriteJSONResponse(w, r, http.StatusOK, types.MergeNeighborhoodsResponse{
		Survivor:           *survivor,
		RepointedAddresses: repointed,
	})
}
