package neighborhood

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-household-registry/internal/types"
)

func TestSaveRecomputesNormalizedName(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewRepository(mockPool, slog.Default())
	cityID := uuid.New()
	newID := uuid.New()

	mockPool.ExpectQuery("INSERT INTO neighborhoods").
		WithArgs(cityID, "São João", "SAO JOAO", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(newID))

	n := types.Neighborhood{CityID: cityID, Name: "São João"}
	require.NoError(t, repo.Save(context.Background(), &n))
	assert.Equal(t, newID, n.ID)
	assert.Equal(t, "SAO JOAO", n.NormalizedName)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestMerge(t *testing.T) {
	logger := slog.Default()
	survivor := types.Neighborhood{ID: uuid.New(), CityID: uuid.New(), Name: "Vila Mariana"}
	duplicateIDs := []uuid.UUID{uuid.New(), uuid.New()}

	t.Run("RepointsAndDeletesInOneTransaction", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE addresses").
			WithArgs(survivor.ID, duplicateIDs).
			WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		mockPool.ExpectExec("UPDATE households").
			WithArgs(survivor.Name, survivor.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		mockPool.ExpectExec("DELETE FROM neighborhoods").
			WithArgs(duplicateIDs).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mockPool.ExpectCommit()

		repointed, err := repo.Merge(context.Background(), survivor, duplicateIDs)
		require.NoError(t, err)
		assert.Equal(t, int64(3), repointed)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenRepointFails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE addresses").
			WithArgs(survivor.ID, duplicateIDs).
			WillReturnError(errors.New("connection reset"))
		mockPool.ExpectRollback()

		_, err = repo.Merge(context.Background(), survivor, duplicateIDs)
		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenDeleteFails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE addresses").
			WithArgs(survivor.ID, duplicateIDs).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("UPDATE households").
			WithArgs(survivor.Name, survivor.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("DELETE FROM neighborhoods").
			WithArgs(duplicateIDs).
			WillReturnError(errors.New("foreign key violation"))
		mockPool.ExpectRollback()

		_, err = repo.Merge(context.Background(), survivor, duplicateIDs)
		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
