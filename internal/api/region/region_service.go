// Package region manages administrative region labels and the merge
// operation that collapses duplicate neighborhoods into a surviving one.
package region

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/internal/api/neighborhood"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the region management contract.
type Service interface {
	CreateRegion(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error)
	ListRegions(ctx context.Context, cityID uuid.UUID) ([]types.RegionSummary, error)
	AssignRegion(ctx context.Context, regionID uuid.UUID, neighborhoodIDs []uuid.UUID) error
	UpdateNeighborhoodsRegion(ctx context.Context, neighborhoodIDs []uuid.UUID, regionID *uuid.UUID, regionName string) error
	MergeNeighborhoods(ctx context.Context, survivorID uuid.UUID, duplicateIDs []uuid.UUID) (*types.Neighborhood, int64, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	repo          Repository
	neighborhoods neighborhood.Repository
}

func NewService(repo Repository, neighborhoods neighborhood.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		repo:          repo,
		neighborhoods: neighborhoods,
	}
}

// CreateRegion registers a new region for the city. Names are unique per
// city, compared case-insensitively.
func (s *ServiceImpl) CreateRegion(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error) {
	name = strings.TrimSpace(name)

	existing, err := s.repo.FindByCityAndName(ctx, cityID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing region: %w", err)
	}
	if existing != nil {
		return nil, types.ErrRegionExists
	}

	region := types.Region{CityID: cityID, Name: name}
	if err := s.repo.Save(ctx, &region); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Region created",
		slog.String("name", region.Name),
		slog.String("city_id", cityID.String()),
	)
	return &region, nil
}

func (s *ServiceImpl) ListRegions(ctx context.Context, cityID uuid.UUID) ([]types.RegionSummary, error) {
	return s.repo.ListSummariesByCity(ctx, cityID)
}

// AssignRegion labels the given neighborhoods with the region's name in one
// batch. Every neighborhood must belong to the region's city.
func (s *ServiceImpl) AssignRegion(ctx context.Context, regionID uuid.UUID, neighborhoodIDs []uuid.UUID) error {
	region, err := s.repo.GetByID(ctx, regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return types.ErrRegionNotFound
	}

	ids := dedupe(neighborhoodIDs)
	if len(ids) == 0 {
		return nil
	}

	neighborhoods, err := s.neighborhoods.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(neighborhoods) != len(ids) {
		return types.ErrNeighborhoodNotFound
	}
	for _, n := range neighborhoods {
		if n.CityID != region.CityID {
			return types.ErrCrossCityMismatch
		}
	}

	return s.neighborhoods.UpdateRegionNames(ctx, ids, &region.Name)
}

// UpdateNeighborhoodsRegion relabels the given neighborhoods with a region
// resolved by id, by name (created for the city when absent), or clears the
// label when neither is given. All neighborhoods must share one city.
func (s *ServiceImpl) UpdateNeighborhoodsRegion(ctx context.Context, neighborhoodIDs []uuid.UUID, regionID *uuid.UUID, regionName string) error {
	ids := dedupe(neighborhoodIDs)
	if len(ids) == 0 {
		return nil
	}

	neighborhoods, err := s.neighborhoods.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(neighborhoods) != len(ids) {
		return types.ErrNeighborhoodNotFound
	}
	cityID := neighborhoods[0].CityID
	for _, n := range neighborhoods[1:] {
		if n.CityID != cityID {
			return types.ErrCrossCityMismatch
		}
	}

	label, err := s.resolveLabel(ctx, cityID, regionID, regionName)
	if err != nil {
		return err
	}
	return s.neighborhoods.UpdateRegionNames(ctx, ids, label)
}

func (s *ServiceImpl) resolveLabel(ctx context.Context, cityID uuid.UUID, regionID *uuid.UUID, regionName string) (*string, error) {
	if regionID != nil {
		region, err := s.repo.GetByID(ctx, *regionID)
		if err != nil {
			return nil, err
		}
		if region == nil {
			return nil, types.ErrRegionNotFound
		}
		if region.CityID != cityID {
			return nil, types.ErrCrossCityMismatch
		}
		return &region.Name, nil
	}

	name := strings.TrimSpace(regionName)
	if name == "" {
		return nil, nil
	}

	region, err := s.repo.FindByCityAndName(ctx, cityID, name)
	if err != nil {
		return nil, err
	}
	if region == nil {
		region = &types.Region{CityID: cityID, Name: name}
		if err := s.repo.Save(ctx, region); err != nil {
			return nil, fmt.Errorf("failed to create region %q: %w", name, err)
		}
	}
	return &region.Name, nil
}

// MergeNeighborhoods collapses the duplicate neighborhoods into the
// survivor. References to the survivor itself are ignored; the remaining
// duplicates must belong to the survivor's city. Repointing and deletion
// happen atomically in the repository. Returns the survivor and the number
// of repointed addresses.
func (s *ServiceImpl) MergeNeighborhoods(ctx context.Context, survivorID uuid.UUID, duplicateIDs []uuid.UUID) (*types.Neighborhood, int64, error) {
	var dups []uuid.UUID
	for _, id := range dedupe(duplicateIDs) {
		if id != survivorID {
			dups = append(dups, id)
		}
	}
	if len(dups) == 0 {
		return nil, 0, types.ErrEmptyMergeSelection
	}

	neighborhoods, err := s.neighborhoods.GetByIDs(ctx, append([]uuid.UUID{survivorID}, dups...))
	if err != nil {
		return nil, 0, err
	}
	if len(neighborhoods) != len(dups)+1 {
		return nil, 0, types.ErrNeighborhoodNotFound
	}

	var survivor *types.Neighborhood
	for i := range neighborhoods {
		if neighborhoods[i].ID == survivorID {
			survivor = &neighborhoods[i]
			break
		}
	}
	if survivor == nil {
		return nil, 0, types.ErrNeighborhoodNotFound
	}
	for _, n := range neighborhoods {
		if n.CityID != survivor.CityID {
			return nil, 0, types.ErrCrossCityMismatch
		}
	}

	repointed, err := s.neighborhoods.Merge(ctx, *survivor, dups)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to merge neighborhoods: %w", err)
	}

	metrics.Get().NeighborhoodMergesTotal.Add(ctx, int64(len(dups)))
	s.logger.InfoContext(ctx, "Neighborhoods merged",
		slog.String("survivor", survivor.Name),
		slog.Int("duplicates", len(dups)),
		slog.Int64("repointed_addresses", repointed),
	)
	return survivor, repointed, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
