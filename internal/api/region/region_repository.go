package region

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

// Repository persists region rows. Lookups that find nothing return
// (nil, nil); the service layer decides whether that is an error.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.Region, error)
	FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error)
	Save(ctx context.Context, region *types.Region) error
	ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Region, error)
	ListSummariesByCity(ctx context.Context, cityID uuid.UUID) ([]types.RegionSummary, error)
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

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Region, error) {
	var region types.Region
	query := `SELECT id, city_id, name FROM regions WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&region.ID, &region.CityID, &region.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return &region, nil
}

func (r *PostgresRepository) FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*types.Region, error) {
	var region types.Region
	query := `SELECT id, city_id, name FROM regions WHERE city_id = $1 AND LOWER(name) = LOWER($2)`
	err := r.db.QueryRow(ctx, query, cityID, name).Scan(&region.ID, &region.CityID, &region.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find region by name: %w", err)
	}
	return &region, nil
}

func (r *PostgresRepository) Save(ctx context.Context, region *types.Region) error {
	if region.ID == uuid.Nil {
		query := `INSERT INTO regions (city_id, name) VALUES ($1, $2) RETURNING id`
		if err := r.db.QueryRow(ctx, query, region.CityID, region.Name).Scan(&region.ID); err != nil {
			return fmt.Errorf("failed to insert region: %w", err)
		}
		return nil
	}

	query := `UPDATE regions SET name = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, region.ID, region.Name); err != nil {
		return fmt.Errorf("failed to update region: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Region, error) {
	query := `SELECT id, city_id, name FROM regions WHERE city_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []types.Region
	for rows.Next() {
		var region types.Region
		if err := rows.Scan(&region.ID, &region.CityID, &region.Name); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading regions: %w", err)
	}
	return regions, nil
}

// ListSummariesByCity returns every registered region of the city together
// with the number of neighborhoods carrying its name, plus free-text region
// labels that appear on neighborhoods without a registered region row.
func (r *PostgresRepository) ListSummariesByCity(ctx context.Context, cityID uuid.UUID) ([]types.RegionSummary, error) {
	query := `
        SELECT r.id, COALESCE(r.name, counts.label) AS name, COALESCE(counts.total, 0) AS neighborhood_count
        FROM (
            SELECT id, name FROM regions WHERE city_id = $1
        ) r
        FULL OUTER JOIN (
            SELECT region_name AS label, COUNT(*) AS total
            FROM neighborhoods
            WHERE city_id = $1 AND region_name IS NOT NULL
            GROUP BY region_name
        ) counts ON LOWER(counts.label) = LOWER(r.name)
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list region summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.RegionSummary
	for rows.Next() {
		var summary types.RegionSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.NeighborhoodCount); err != nil {
			return nil, fmt.Errorf("failed to scan region summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading region summaries: %w", err)
	}
	return summaries, nil
}
