package neighborhood

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-household-registry/internal/textutil"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Neighborhood, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockRepository) ListByCityAndRegion(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error) {
	args := m.Called(ctx, cityID, regionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Neighborhood, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, n *types.Neighborhood) error {
	args := m.Called(ctx, n)
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.NormalizedName = textutil.Normalize(n.Name)
	return args.Error(0)
}

func (m *MockRepository) UpdateRegionNames(ctx context.Context, ids []uuid.UUID, regionName *string) error {
	args := m.Called(ctx, ids, regionName)
	return args.Error(0)
}

func (m *MockRepository) Merge(ctx context.Context, survivor types.Neighborhood, duplicateIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, survivor, duplicateIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockRegionStore is a mock implementation of the RegionStore interface
type MockRegionStore struct {
	mock.Mock
}

func (m *MockRegionStore) FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error) {
	args := m.Called(ctx, cityID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Region), args.Error(1)
}

func (m *MockRegionStore) Save(ctx context.Context, region *types.Region) error {
	args := m.Called(ctx, region)
	region.ID = uuid.New()
	return args.Error(0)
}

func TestResolve(t *testing.T) {
	logger := slog.Default()
	city := types.City{ID: uuid.New(), Name: "São Paulo", StateCode: "SP"}

	t.Run("MatchesExistingDespiteFormatting", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		existing := types.Neighborhood{
			ID:             uuid.New(),
			CityID:         city.ID,
			Name:           "Vila Mariana",
			NormalizedName: "VILA MARIANA",
		}
		mockRepo.On("ListByCity", mock.Anything, city.ID).Return([]types.Neighborhood{existing}, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Neighborhood")).Return(nil).Once()

		resolved, err := service.Resolve(context.Background(), city, "vila  mariana", "")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resolved.ID)
		assert.Equal(t, "Vila Mariana", resolved.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MatchesCloseSpelling", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		existing := types.Neighborhood{
			ID:             uuid.New(),
			CityID:         city.ID,
			Name:           "Consolação",
			NormalizedName: "CONSOLACAO",
		}
		mockRepo.On("ListByCity", mock.Anything, city.ID).Return([]types.Neighborhood{existing}, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Neighborhood")).Return(nil).Once()

		resolved, err := service.Resolve(context.Background(), city, "Consolacão ", "")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resolved.ID)
	})

	t.Run("CreatesTitleCasedWhenNoMatch", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		mockRepo.On("ListByCity", mock.Anything, city.ID).Return([]types.Neighborhood{}, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Neighborhood")).Return(nil).Once()

		resolved, err := service.Resolve(context.Background(), city, "jardim das flores", "")
		require.NoError(t, err)
		assert.Equal(t, "Jardim Das Flores", resolved.Name)
		assert.NotEqual(t, uuid.Nil, resolved.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("BlankCandidateFails", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		_, err := service.Resolve(context.Background(), city, "   ", "")
		assert.ErrorIs(t, err, types.ErrMissingNeighborhood)
	})

	t.Run("RegionHintCreatesMissingRegion", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		mockRepo.On("ListByCity", mock.Anything, city.ID).Return([]types.Neighborhood{}, nil).Once()
		mockRegions.On("FindByCityAndName", mock.Anything, city.ID, "Zona Sul").Return(nil, nil).Once()
		mockRegions.On("Save", mock.Anything, mock.AnythingOfType("*types.Region")).Return(nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Neighborhood")).Return(nil).Once()

		resolved, err := service.Resolve(context.Background(), city, "saúde", " Zona Sul ")
		require.NoError(t, err)
		require.NotNil(t, resolved.RegionName)
		assert.Equal(t, "Zona Sul", *resolved.RegionName)
		mockRegions.AssertExpectations(t)
	})

	t.Run("RegionHintReusesExistingRegion", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRegions := new(MockRegionStore)
		service := NewService(mockRepo, mockRegions, logger)

		existing := types.Neighborhood{
			ID:             uuid.New(),
			CityID:         city.ID,
			Name:           "Santana",
			NormalizedName: "SANTANA",
		}
		region := &types.Region{ID: uuid.New(), CityID: city.ID, Name: "Zona Norte"}

		mockRepo.On("ListByCity", mock.Anything, city.ID).Return([]types.Neighborhood{existing}, nil).Once()
		mockRegions.On("FindByCityAndName", mock.Anything, city.ID, "zona norte").Return(region, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Neighborhood")).Return(nil).Once()

		resolved, err := service.Resolve(context.Background(), city, "Santana", "zona norte")
		require.NoError(t, err)
		require.NotNil(t, resolved.RegionName)
		// The stored region's canonical name wins over the hint's casing.
		assert.Equal(t, "Zona Norte", *resolved.RegionName)
	})
}

func TestListNeighborhoods(t *testing.T) {
	logger := slog.Default()
	cityID := uuid.New()

	t.Run("WithoutRegionFilter", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, new(MockRegionStore), logger)

		mockRepo.On("ListByCity", mock.Anything, cityID).Return([]types.Neighborhood{}, nil).Once()
		_, err := service.ListNeighborhoods(context.Background(), cityID, "")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WithRegionFilter", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, new(MockRegionStore), logger)

		mockRepo.On("ListByCityAndRegion", mock.Anything, cityID, "Zona Sul").Return([]types.Neighborhood{}, nil).Once()
		_, err := service.ListNeighborhoods(context.Background(), cityID, " Zona Sul ")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
