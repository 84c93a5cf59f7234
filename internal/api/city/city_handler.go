package city

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-household-registry/internal/api"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewCityHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		repo:   repo,
	}
}

// ListCities handles GET /cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "ListCities")
	defer span.End()

	l := h.logger.With(slog.String("method", "ListCities"))

	cities, err := h.repo.ListCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list cities")
		return
	}
	if cities == nil {
		cities = []types.City{}
	}

	span.SetStatus(codes.Ok, "Cities listed")
	api.WriteJSONResponse(w, r, http.StatusOK, cities)
}
