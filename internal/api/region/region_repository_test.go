package region

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSummariesByCity(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewRepository(mockPool, slog.Default())
	cityID := uuid.New()
	registeredID := uuid.New()
	emptyRegionID := uuid.New()

	// The regions side of the join must be scoped to the requested city, so
	// a same-named region registered in another city can never absorb a
	// free-text label row and hide it from this city's summary.
	mockPool.ExpectQuery(`SELECT id, name FROM regions WHERE city_id = \$1`).
		WithArgs(cityID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "neighborhood_count"}).
			AddRow(nil, "Centro", int64(3)).
			AddRow(&registeredID, "Zona Norte", int64(2)).
			AddRow(&emptyRegionID, "Zona Sul", int64(0)))

	summaries, err := repo.ListSummariesByCity(context.Background(), cityID)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Nil(t, summaries[0].ID)
	assert.Equal(t, "Centro", summaries[0].Name)
	assert.Equal(t, int64(3), summaries[0].NeighborhoodCount)

	require.NotNil(t, summaries[1].ID)
	assert.Equal(t, registeredID, *summaries[1].ID)
	assert.Equal(t, int64(0), summaries[2].NeighborhoodCount)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
