package household

import (
	"log/slog"
	"net/http"

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

func NewHouseholdHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// RegisterHousehold handles POST /households
func (h *Handler) RegisterHousehold(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HouseholdHandler").Start(r.Context(), "RegisterHousehold")
	defer span.End()

	l := h.logger.With(slog.String("method", "RegisterHousehold"))

	var req types.RegisterHouseholdRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.CityID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "City ID is required")
		return
	}

	household, err := h.service.RegisterHousehold(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to register household", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Household registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, household)
}

// ListHouseholds handles GET /households
func (h *Handler) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HouseholdHandler").Start(r.Context(), "ListHouseholds")
	defer span.End()

	l := h.logger.With(slog.String("method", "ListHouseholds"))

	filter, err := filterFromQuery(r)
	if err != nil {
		l.WarnContext(ctx, "Invalid filter", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.service.ListHouseholds(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list households", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list households")
		return
	}

	span.SetStatus(codes.Ok, "Households listed")
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

func filterFromQuery(r *http.Request) (types.HouseholdFilter, error) {
	q := r.URL.Query()
	filter := types.HouseholdFilter{
		Region:       q.Get("region"),
		Neighborhood: q.Get("neighborhood"),
		Street:       q.Get("street"),
		PostalCode:   q.Get("postal_code"),
		MemberName:   q.Get("member"),
		Term:         q.Get("q"),
	}
	if raw := q.Get("city_id"); raw != "" {
		cityID, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.CityID = &cityID
	}
	return filter, nil
}
