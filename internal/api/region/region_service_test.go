package region

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Region, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Region), args.Error(1)
}

func (m *MockRepository) FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error) {
	args := m.Called(ctx, cityID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Region), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, region *types.Region) error {
	args := m.Called(ctx, region)
	if region.ID == uuid.Nil {
		region.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Region, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Region), args.Error(1)
}

func (m *MockRepository) ListSummariesByCity(ctx context.Context, cityID uuid.UUID) ([]types.RegionSummary, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RegionSummary), args.Error(1)
}

// MockNeighborhoodRepository is a mock implementation of the neighborhood
// Repository interface
type MockNeighborhoodRepository struct {
	mock.Mock
}

func (m *MockNeighborhoodRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Neighborhood, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockNeighborhoodRepository) ListByCityAndRegion(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error) {
	args := m.Called(ctx, cityID, regionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockNeighborhoodRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Neighborhood, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Neighborhood), args.Error(1)
}

func (m *MockNeighborhoodRepository) Save(ctx context.Context, n *types.Neighborhood) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNeighborhoodRepository) UpdateRegionNames(ctx context.Context, ids []uuid.UUID, regionName *string) error {
	args := m.Called(ctx, ids, regionName)
	return args.Error(0)
}

func (m *MockNeighborhoodRepository) Merge(ctx context.Context, survivor types.Neighborhood, duplicateIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, survivor, duplicateIDs)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateRegion(t *testing.T) {
	logger := slog.Default()
	cityID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, new(MockNeighborhoodRepository), logger)

		mockRepo.On("FindByCityAndName", mock.Anything, cityID, "Zona Leste").Return(nil, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Region")).Return(nil).Once()

		region, err := service.CreateRegion(context.Background(), cityID, " Zona Leste ")
		require.NoError(t, err)
		assert.Equal(t, "Zona Leste", region.Name)
		assert.NotEqual(t, uuid.Nil, region.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateNameRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, new(MockNeighborhoodRepository), logger)

		existing := &types.Region{ID: uuid.New(), CityID: cityID, Name: "Zona Leste"}
		mockRepo.On("FindByCityAndName", mock.Anything, cityID, "zona leste").Return(existing, nil).Once()

		_, err := service.CreateRegion(context.Background(), cityID, "zona leste")
		assert.ErrorIs(t, err, types.ErrRegionExists)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAssignRegion(t *testing.T) {
	logger := slog.Default()
	cityID := uuid.New()
	region := &types.Region{ID: uuid.New(), CityID: cityID, Name: "Zona Norte"}

	t.Run("LabelsAllNeighborhoods", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		found := []types.Neighborhood{
			{ID: ids[0], CityID: cityID, Name: "Santana"},
			{ID: ids[1], CityID: cityID, Name: "Tucuruvi"},
		}
		mockRepo.On("GetByID", mock.Anything, region.ID).Return(region, nil).Once()
		mockNeighborhoods.On("GetByIDs", mock.Anything, ids).Return(found, nil).Once()
		mockNeighborhoods.On("UpdateRegionNames", mock.Anything, ids, &region.Name).Return(nil).Once()

		require.NoError(t, service.AssignRegion(context.Background(), region.ID, ids))
		mockNeighborhoods.AssertExpectations(t)
	})

	t.Run("UnknownRegion", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		mockRepo.On("GetByID", mock.Anything, region.ID).Return(nil, nil).Once()

		err := service.AssignRegion(context.Background(), region.ID, []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, types.ErrRegionNotFound)
		mockNeighborhoods.AssertNotCalled(t, "UpdateRegionNames", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CrossCityRejectedWithoutWrites", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		found := []types.Neighborhood{
			{ID: ids[0], CityID: cityID, Name: "Santana"},
			{ID: ids[1], CityID: uuid.New(), Name: "Centro"},
		}
		mockRepo.On("GetByID", mock.Anything, region.ID).Return(region, nil).Once()
		mockNeighborhoods.On("GetByIDs", mock.Anything, ids).Return(found, nil).Once()

		err := service.AssignRegion(context.Background(), region.ID, ids)
		assert.ErrorIs(t, err, types.ErrCrossCityMismatch)
		mockNeighborhoods.AssertNotCalled(t, "UpdateRegionNames", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateNeighborhoodsRegion(t *testing.T) {
	logger := slog.Default()
	cityID := uuid.New()
	ids := []uuid.UUID{uuid.New()}
	found := []types.Neighborhood{{ID: ids[0], CityID: cityID, Name: "Saúde"}}

	t.Run("EnsuresRegionByName", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		mockNeighborhoods.On("GetByIDs", mock.Anything, ids).Return(found, nil).Once()
		mockRepo.On("FindByCityAndName", mock.Anything, cityID, "Zona Sul").Return(nil, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*types.Region")).Return(nil).Once()
		mockNeighborhoods.On("UpdateRegionNames", mock.Anything, ids, mock.MatchedBy(func(label *string) bool {
			return label != nil && *label == "Zona Sul"
		})).Return(nil).Once()

		err := service.UpdateNeighborhoodsRegion(context.Background(), ids, nil, " Zona Sul ")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockNeighborhoods.AssertExpectations(t)
	})

	t.Run("ClearsLabelWhenNeitherGiven", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		mockNeighborhoods.On("GetByIDs", mock.Anything, ids).Return(found, nil).Once()
		mockNeighborhoods.On("UpdateRegionNames", mock.Anything, ids, (*string)(nil)).Return(nil).Once()

		err := service.UpdateNeighborhoodsRegion(context.Background(), ids, nil, "")
		require.NoError(t, err)
		mockNeighborhoods.AssertExpectations(t)
	})

	t.Run("RegionFromAnotherCityRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		foreign := &types.Region{ID: uuid.New(), CityID: uuid.New(), Name: "Zona Oeste"}
		mockNeighborhoods.On("GetByIDs", mock.Anything, ids).Return(found, nil).Once()
		mockRepo.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil).Once()

		err := service.UpdateNeighborhoodsRegion(context.Background(), ids, &foreign.ID, "")
		assert.ErrorIs(t, err, types.ErrCrossCityMismatch)
		mockNeighborhoods.AssertNotCalled(t, "UpdateRegionNames", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMergeNeighborhoods(t *testing.T) {
	logger := slog.Default()
	cityID := uuid.New()
	survivor := types.Neighborhood{ID: uuid.New(), CityID: cityID, Name: "Vila Mariana", NormalizedName: "VILA MARIANA"}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		dup := types.Neighborhood{ID: uuid.New(), CityID: cityID, Name: "Vila  Mariana"}
		lookup := []uuid.UUID{survivor.ID, dup.ID}
		mockNeighborhoods.On("GetByIDs", mock.Anything, lookup).
			Return([]types.Neighborhood{survivor, dup}, nil).Once()
		mockNeighborhoods.On("Merge", mock.Anything, survivor, []uuid.UUID{dup.ID}).
			Return(int64(4), nil).Once()

		got, repointed, err := service.MergeNeighborhoods(context.Background(), survivor.ID, []uuid.UUID{dup.ID})
		require.NoError(t, err)
		assert.Equal(t, survivor.ID, got.ID)
		assert.Equal(t, int64(4), repointed)
		mockNeighborhoods.AssertExpectations(t)
	})

	t.Run("SurvivorAmongDuplicatesIsIgnored", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		_, _, err := service.MergeNeighborhoods(context.Background(), survivor.ID, []uuid.UUID{survivor.ID})
		assert.ErrorIs(t, err, types.ErrEmptyMergeSelection)
		mockNeighborhoods.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptySelection", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		_, _, err := service.MergeNeighborhoods(context.Background(), survivor.ID, nil)
		assert.ErrorIs(t, err, types.ErrEmptyMergeSelection)
	})

	t.Run("CrossCityRejectedWithoutWrites", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		dup := types.Neighborhood{ID: uuid.New(), CityID: uuid.New(), Name: "Centro"}
		lookup := []uuid.UUID{survivor.ID, dup.ID}
		mockNeighborhoods.On("GetByIDs", mock.Anything, lookup).
			Return([]types.Neighborhood{survivor, dup}, nil).Once()

		_, _, err := service.MergeNeighborhoods(context.Background(), survivor.ID, []uuid.UUID{dup.ID})
		assert.ErrorIs(t, err, types.ErrCrossCityMismatch)
		mockNeighborhoods.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownDuplicate", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNeighborhoods := new(MockNeighborhoodRepository)
		service := NewService(mockRepo, mockNeighborhoods, logger)

		missing := uuid.New()
		lookup := []uuid.UUID{survivor.ID, missing}
		mockNeighborhoods.On("GetByIDs", mock.Anything, lookup).
			Return([]types.Neighborhood{survivor}, nil).Once()

		_, _, err := service.MergeNeighborhoods(context.Background(), survivor.ID, []uuid.UUID{missing})
		assert.ErrorIs(t, err, types.ErrNeighborhoodNotFound)
	})
}
