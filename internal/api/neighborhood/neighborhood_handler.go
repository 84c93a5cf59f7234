package neighborhood

import (
	"log/slog"
	"net/http"

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

func NewNeighborhoodHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// ListNeighborhoods handles GET /cities/{cityID}/neighborhoods?region=
func (h *Handler) ListNeighborhoods(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("NeighborhoodHandler").Start(r.Context(), "ListNeighborhoods")
	defer span.End()

	l := h.logger.With(slog.String("method", "ListNeighborhoods"))

	cityID, err := uuid.Parse(chi.URLParam(r, "cityID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid city ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID")
		return
	}

	region := r.URL.Query().Get("region")
	neighborhoods, err := h.service.ListNeighborhoods(ctx, cityID, region)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list neighborhoods", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list neighborhoods")
		return
	}
	if neighborhoods == nil {
		neighborhoods = []types.Neighborhood{}
	}

	span.SetStatus(codes.Ok, "Neighborhoods listed")
	api.WriteJSONResponse(w, r, http.StatusOK, neighborhoods)
}
