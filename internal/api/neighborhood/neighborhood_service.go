// Package neighborhood resolves candidate neighborhood names against the
// existing records of a city using fuzzy matching, so spelling and
// formatting variance does not create duplicate rows.
package neighborhood

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-household-registry/internal/textutil"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// matchThreshold is the minimum similarity score for reusing an existing
// neighborhood instead of creating a new row.
const matchThreshold = 0.9

// RegionStore is the slice of region persistence the resolver needs to
// honor region hints; satisfied by the region repository.
type RegionStore interface {
	FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error)
	Save(ctx context.Context, region *types.Region) error
}

var _ Service = (*ServiceImpl)(nil)

// Service defines the neighborhood resolution contract.
type Service interface {
	Resolve(ctx context.Context, city types.City, candidateName, regionHint string) (*types.Neighborhood, error)
	ListNeighborhoods(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	regionStore RegionStore
}

func NewService(repo Repository, regionStore RegionStore, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		regionStore: regionStore,
	}
}

// Resolve finds the best existing match for the candidate name above the
// similarity threshold, or creates a new neighborhood with a title-cased
// name. The optional region hint is applied in both cases, creating the
// region row for the city when it does not exist yet.
func (s *ServiceImpl) Resolve(ctx context.Context, city types.City, candidateName, regionHint string) (*types.Neighborhood, error) {
	candidate := strings.TrimSpace(candidateName)
	if candidate == "" {
		return nil, types.ErrMissingNeighborhood
	}

	existing, err := s.repo.ListByCity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods for matching: %w", err)
	}

	if idx := textutil.BestMatch(existing, candidate, matchThreshold); idx >= 0 {
		matched := existing[idx]
		s.logger.DebugContext(ctx, "Candidate matched existing neighborhood",
			slog.String("candidate", candidate),
			slog.String("matched", matched.Name),
		)
		if err := s.applyRegion(ctx, city, &matched, regionHint); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, &matched); err != nil {
			return nil, err
		}
		return &matched, nil
	}

	created := types.Neighborhood{
		CityID: city.ID,
		Name:   textutil.FormatName(candidate),
	}
	s.logger.InfoContext(ctx, "Creating neighborhood",
		slog.String("name", created.Name),
		slog.String("city", city.Name),
	)
	if err := s.applyRegion(ctx, city, &created, regionHint); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// applyRegion sets the neighborhood's region label from the hint, creating
// the Region row for the city when no case-insensitive match exists.
func (s *ServiceImpl) applyRegion(ctx context.Context, city types.City, n *types.Neighborhood, regionHint string) error {
	name := strings.TrimSpace(regionHint)
	if name == "" {
		return nil
	}

	region, err := s.regionStore.FindByCityAndName(ctx, city.ID, name)
	if err != nil {
		return fmt.Errorf("failed to look up region %q: %w", name, err)
	}
	if region == nil {
		region = &types.Region{CityID: city.ID, Name: name}
		if err := s.regionStore.Save(ctx, region); err != nil {
			return fmt.Errorf("failed to create region %q: %w", name, err)
		}
	}
	n.RegionName = &region.Name
	return nil
}

// ListNeighborhoods returns the neighborhoods of a city, optionally
// filtered by region label.
func (s *ServiceImpl) ListNeighborhoods(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error) {
	if region := strings.TrimSpace(regionName); region != "" {
		return s.repo.ListByCityAndRegion(ctx, cityID, region)
	}
	return s.repo.ListByCity(ctx, cityID)
}
