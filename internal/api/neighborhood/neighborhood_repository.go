package neighborhood

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-household-registry/internal/textutil"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// DB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock pools in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

// Repository persists neighborhoods and performs the referencing-row
// repointing required by merges.
type Repository interface {
	ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Neighborhood, error)
	ListByCityAndRegion(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Neighborhood, error)
	Save(ctx context.Context, n *types.Neighborhood) error
	UpdateRegionNames(ctx context.Context, ids []uuid.UUID, regionName *string) error
	Merge(ctx context.Context, survivor types.Neighborhood, duplicateIDs []uuid.UUID) (int64, error)
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

const neighborhoodColumns = "id, city_id, name, normalized_name, region_name"

func scanNeighborhoods(rows pgx.Rows) ([]types.Neighborhood, error) {
	defer rows.Close()
	var neighborhoods []types.Neighborhood
	for rows.Next() {
		var n types.Neighborhood
		if err := rows.Scan(&n.ID, &n.CityID, &n.Name, &n.NormalizedName, &n.RegionName); err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood: %w", err)
		}
		neighborhoods = append(neighborhoods, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading neighborhoods: %w", err)
	}
	return neighborhoods, nil
}

func (r *PostgresRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]types.Neighborhood, error) {
	query := `
        SELECT ` + neighborhoodColumns + `
        FROM neighborhoods
        WHERE city_id = $1
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighborhoods: %w", err)
	}
	return scanNeighborhoods(rows)
}

func (r *PostgresRepository) ListByCityAndRegion(ctx context.Context, cityID uuid.UUID, regionName string) ([]types.Neighborhood, error) {
	query := `
        SELECT ` + neighborhoodColumns + `
        FROM neighborhoods
        WHERE city_id = $1 AND LOWER(region_name) = LOWER($2)
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, cityID, regionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighborhoods by region: %w", err)
	}
	return scanNeighborhoods(rows)
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Neighborhood, error) {
	query := `
        SELECT ` + neighborhoodColumns + `
        FROM neighborhoods
        WHERE id = ANY($1)
    `
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get neighborhoods by ids: %w", err)
	}
	return scanNeighborhoods(rows)
}

// Save inserts or updates a neighborhood, recomputing normalized_name from
// the current name so the dedup key never drifts out of sync.
func (r *PostgresRepository) Save(ctx context.Context, n *types.Neighborhood) error {
	n.NormalizedName = textutil.Normalize(n.Name)

	if n.ID == uuid.Nil {
		query := `
            INSERT INTO neighborhoods (city_id, name, normalized_name, region_name)
            VALUES ($1, $2, $3, $4) RETURNING id
        `
		if err := r.db.QueryRow(ctx, query, n.CityID, n.Name, n.NormalizedName, n.RegionName).Scan(&n.ID); err != nil {
			return fmt.Errorf("failed to insert neighborhood: %w", err)
		}
		return nil
	}

	query := `
        UPDATE neighborhoods
        SET name = $2, normalized_name = $3, region_name = $4
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, n.ID, n.Name, n.NormalizedName, n.RegionName); err != nil {
		return fmt.Errorf("failed to update neighborhood: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateRegionNames(ctx context.Context, ids []uuid.UUID, regionName *string) error {
	query := `
        UPDATE neighborhoods
        SET region_name = $2
        WHERE id = ANY($1)
    `
	if _, err := r.db.Exec(ctx, query, ids, regionName); err != nil {
		return fmt.Errorf("failed to update neighborhood regions: %w", err)
	}
	return nil
}

// Merge repoints every address referencing a duplicate neighborhood to the
// survivor, refreshes the denormalized neighborhood-name copy on the owning
// households, and deletes the duplicate rows, all inside one transaction.
// Returns the number of repointed addresses.
func (r *PostgresRepository) Merge(ctx context.Context, survivor types.Neighborhood, duplicateIDs []uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repointed, err := tx.Exec(ctx, `
        UPDATE addresses
        SET neighborhood_id = $1
        WHERE neighborhood_id = ANY($2)
    `, survivor.ID, duplicateIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint addresses: %w", err)
	}

	if _, err = tx.Exec(ctx, `
        UPDATE households
        SET neighborhood_name = $1
        WHERE address_id IN (
            SELECT id FROM addresses WHERE neighborhood_id = $2
        )
    `, survivor.Name, survivor.ID); err != nil {
		return 0, fmt.Errorf("failed to refresh household neighborhood names: %w", err)
	}

	if _, err = tx.Exec(ctx, `
        DELETE FROM neighborhoods
        WHERE id = ANY($1)
    `, duplicateIDs); err != nil {
		return 0, fmt.Errorf("failed to delete duplicate neighborhoods: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit merge transaction: %w", err)
	}
	return repointed.RowsAffected(), nil
}
