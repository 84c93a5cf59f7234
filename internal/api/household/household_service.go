// Package household orchestrates the address resolution pipeline for
// registering family units: postal lookup, city cross-check, neighborhood
// resolution, best-effort geocoding and transactional persistence.
package household

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/internal/api/geocoding"
	"github.com/FACorreiaa/go-household-registry/internal/api/neighborhood"
	"github.com/FACorreiaa/go-household-registry/internal/api/postal"
	"github.com/FACorreiaa/go-household-registry/internal/textutil"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// CityStore is the slice of city persistence the registration flow needs;
// satisfied by the city repository.
type CityStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.City, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service defines the household registration contract.
type Service interface {
	RegisterHousehold(ctx context.Context, req types.RegisterHouseholdRequest) (*types.Household, error)
	ListHouseholds(ctx context.Context, filter types.HouseholdFilter) (*types.HouseholdList, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	repo          Repository
	cities        CityStore
	postal        postal.Client
	geocoder      geocoding.Client
	neighborhoods neighborhood.Service
}

func NewService(
	repo Repository,
	cities CityStore,
	postalClient postal.Client,
	geocoder geocoding.Client,
	neighborhoods neighborhood.Service,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		repo:          repo,
		cities:        cities,
		postal:        postalClient,
		geocoder:      geocoder,
		neighborhoods: neighborhoods,
	}
}

// RegisterHousehold runs the full registration pipeline. The postal lookup
// is mandatory and its city/state must match the selected city; geocoding is
// best-effort and never fails the registration. Nothing is persisted until
// every resolution step has succeeded.
func (s *ServiceImpl) RegisterHousehold(ctx context.Context, req types.RegisterHouseholdRequest) (*types.Household, error) {
	l := s.logger.With(slog.String("method", "RegisterHousehold"))

	if err := validateMembers(req.Members); err != nil {
		return nil, err
	}

	city, err := s.cities.GetByID(ctx, req.CityID)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, types.ErrCityNotFound
	}

	record, err := s.postal.Lookup(ctx, req.PostalCode)
	if err != nil {
		return nil, err
	}
	if err := checkCityMatch(record, city); err != nil {
		l.WarnContext(ctx, "Postal record does not match selected city",
			slog.String("postal_city", record.City),
			slog.String("selected_city", city.Name),
		)
		return nil, err
	}

	resolved, err := s.neighborhoods.Resolve(ctx, *city, record.Neighborhood, req.RegionHint)
	if err != nil {
		return nil, err
	}

	street := firstNonBlank(req.Street, record.Street)
	postalCode := postal.SanitizePostalCode(record.PostalCode)
	fullAddress := assembleFullAddress(street, req.Number, resolved.Name, city, postalCode)

	coords := s.geocodeBestEffort(ctx, fullAddress, record)

	household := types.Household{
		AddressSummary:   fullAddress,
		NeighborhoodName: resolved.Name,
		Address: &types.Address{
			Street:         street,
			Number:         strings.TrimSpace(req.Number),
			PostalCode:     postalCode,
			CityID:         city.ID,
			NeighborhoodID: &resolved.ID,
		},
		Members: buildMembers(req.Members),
	}
	if coords != nil {
		household.Address.Latitude = &coords.Latitude
		household.Address.Longitude = &coords.Longitude
	}

	if err := s.repo.CreateWithAddress(ctx, &household); err != nil {
		return nil, err
	}

	metrics.Get().HouseholdRegistrationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Household registered",
		slog.String("household_id", household.ID.String()),
		slog.String("neighborhood", resolved.Name),
		slog.Bool("geocoded", coords != nil),
	)
	return &household, nil
}

// geocodeBestEffort resolves coordinates for the assembled address, falling
// back to coordinates embedded in the postal record. Failures degrade to no
// coordinates.
func (s *ServiceImpl) geocodeBestEffort(ctx context.Context, fullAddress string, record *types.PostalRecord) *types.Coordinate {
	coords, err := s.geocoder.Resolve(ctx, fullAddress)
	if err != nil {
		s.logger.WarnContext(ctx, "Geocoding failed, registering without coordinates",
			slog.Any("error", err),
			slog.String("address", fullAddress),
		)
		coords = nil
	}
	if coords == nil && record.Coordinates != nil {
		coords = record.Coordinates
	}
	return coords
}

func validateMembers(members []types.RegisterMemberRequest) error {
	if len(members) == 0 {
		return types.ErrMissingMembers
	}
	hasPrimary := false
	for _, m := range members {
		if strings.TrimSpace(m.FullName) == "" {
			return fmt.Errorf("member name is required: %w", types.ErrMissingMembers)
		}
		if m.PrimaryContact {
			hasPrimary = true
		}
	}
	if !hasPrimary {
		return types.ErrMissingPrimaryContact
	}
	return nil
}

// checkCityMatch verifies the postal record against the selected city using
// accent-insensitive name comparison and case-insensitive state comparison.
func checkCityMatch(record *types.PostalRecord, city *types.City) error {
	if textutil.Normalize(record.City) != textutil.Normalize(city.Name) {
		return types.ErrPostalCityMismatch
	}
	if !strings.EqualFold(strings.TrimSpace(record.State), city.StateCode) {
		return types.ErrPostalCityMismatch
	}
	return nil
}

// assembleFullAddress builds the canonical geocodable address line:
// "street, number, neighborhood, City - ST, CEP 00000-000, Brasil".
func assembleFullAddress(street, number, neighborhoodName string, city *types.City, postalCode string) string {
	parts := []string{street}
	if n := strings.TrimSpace(number); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts,
		neighborhoodName,
		fmt.Sprintf("%s - %s", city.Name, city.StateCode),
		"CEP "+formatPostalCode(postalCode),
		"Brasil",
	)
	return strings.Join(parts, ", ")
}

func formatPostalCode(code string) string {
	if len(code) != 8 {
		return code
	}
	return code[:5] + "-" + code[5:]
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func buildMembers(reqs []types.RegisterMemberRequest) []types.HouseholdMember {
	members := make([]types.HouseholdMember, 0, len(reqs))
	for _, m := range reqs {
		members = append(members, types.HouseholdMember{
			FullName:       strings.TrimSpace(m.FullName),
			BirthDate:      m.BirthDate,
			Occupation:     strings.TrimSpace(m.Occupation),
			Relationship:   strings.TrimSpace(m.Relationship),
			PrimaryContact: m.PrimaryContact,
			VoteLikelihood: strings.TrimSpace(m.VoteLikelihood),
			Phone:          strings.TrimSpace(m.Phone),
		})
	}
	return members
}

// ListHouseholds returns the filtered households with summary counters.
func (s *ServiceImpl) ListHouseholds(ctx context.Context, filter types.HouseholdFilter) (*types.HouseholdList, error) {
	households, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if households == nil {
		households = []types.Household{}
	}

	list := types.HouseholdList{
		Households: households,
		Total:      int64(len(households)),
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	for _, h := range households {
		if h.CreatedAt.After(weekAgo) {
			list.NewThisWeek++
		}
		for _, m := range h.Members {
			if m.PrimaryContact {
				list.PrimaryContacts++
			}
		}
	}
	return &list, nil
}
