// Package city exposes the registered cities used to anchor households,
// neighborhoods and regions.
package city

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// DB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock pools in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

// Repository reads registered cities. GetByID returns (nil, nil) when the
// city does not exist.
type Repository interface {
	ListCities(ctx context.Context) ([]types.City, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.City, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresRepository) ListCities(ctx context.Context) ([]types.City, error) {
	query := `SELECT id, name, state_code FROM cities ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	var cities []types.City
	for rows.Next() {
		var city types.City
		if err := rows.Scan(&city.ID, &city.Name, &city.StateCode); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading cities: %w", err)
	}
	return cities, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.City, error) {
	var city types.City
	query := `SELECT id, name, state_code FROM cities WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&city.ID, &city.Name, &city.StateCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return &city, nil
}
