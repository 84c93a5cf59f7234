package household

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

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

// Repository persists households together with their address and members.
type Repository interface {
	CreateWithAddress(ctx context.Context, household *types.Household) error
	List(ctx context.Context, filter types.HouseholdFilter) ([]types.Household, error)
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

// CreateWithAddress inserts the address, the household and its members in
// one transaction. Generated ids and timestamps are written back onto the
// passed-in household.
func (r *PostgresRepository) CreateWithAddress(ctx context.Context, household *types.Household) error {
	if household.Address == nil {
		return fmt.Errorf("household has no address to persist")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start registration transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	addr := household.Address
	err = tx.QueryRow(ctx, `
        INSERT INTO addresses (street, number, postal_code, city_id, neighborhood_id, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
    `, addr.Street, addr.Number, addr.PostalCode, addr.CityID, addr.NeighborhoodID, addr.Latitude, addr.Longitude).Scan(&addr.ID)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO households (address_summary, neighborhood_name, address_id)
        VALUES ($1, $2, $3) RETURNING id, created_at
    `, household.AddressSummary, household.NeighborhoodName, addr.ID).Scan(&household.ID, &household.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}

	for i := range household.Members {
		m := &household.Members[i]
		err = tx.QueryRow(ctx, `
            INSERT INTO household_members (household_id, full_name, birth_date, occupation, relationship, primary_contact, vote_likelihood, phone)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at
        `, household.ID, m.FullName, m.BirthDate, m.Occupation, m.Relationship, m.PrimaryContact, m.VoteLikelihood, m.Phone).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert household member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registration transaction: %w", err)
	}
	return nil
}

// buildFilterClause turns the optional filter fields into SQL predicates.
// Text filters are case-insensitive substring matches; the postal code is an
// exact match on the stored 8-digit form.
func buildFilterClause(filter types.HouseholdFilter) (string, []any) {
	var predicates []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CityID != nil {
		predicates = append(predicates, "a.city_id = "+arg(*filter.CityID))
	}
	if filter.Region != "" {
		predicates = append(predicates, "LOWER(n.region_name) = LOWER("+arg(filter.Region)+")")
	}
	if filter.Neighborhood != "" {
		predicates = append(predicates, "h.neighborhood_name ILIKE "+arg("%"+filter.Neighborhood+"%"))
	}
	if filter.Street != "" {
		predicates = append(predicates, "a.street ILIKE "+arg("%"+filter.Street+"%"))
	}
	if filter.PostalCode != "" {
		predicates = append(predicates, "a.postal_code = "+arg(filter.PostalCode))
	}
	if filter.MemberName != "" {
		predicates = append(predicates, "EXISTS (SELECT 1 FROM household_members m WHERE m.household_id = h.id AND m.full_name ILIKE "+arg("%"+filter.MemberName+"%")+")")
	}
	if filter.Term != "" {
		p := arg("%" + filter.Term + "%")
		predicates = append(predicates, "(h.address_summary ILIKE "+p+" OR h.neighborhood_name ILIKE "+p+" OR EXISTS (SELECT 1 FROM household_members m WHERE m.household_id = h.id AND m.full_name ILIKE "+p+"))")
	}

	if len(predicates) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(predicates, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, filter types.HouseholdFilter) ([]types.Household, error) {
	clause, args := buildFilterClause(filter)
	query := `
        SELECT h.id, h.address_summary, h.neighborhood_name, h.created_at,
               a.id, a.street, a.number, a.postal_code, a.city_id, a.neighborhood_id, a.latitude, a.longitude
        FROM households h
        JOIN addresses a ON a.id = h.address_id
        LEFT JOIN neighborhoods n ON n.id = a.neighborhood_id` + clause + `
        ORDER BY h.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []types.Household
	var ids []uuid.UUID
	for rows.Next() {
		var h types.Household
		var addr types.Address
		err := rows.Scan(&h.ID, &h.AddressSummary, &h.NeighborhoodName, &h.CreatedAt,
			&addr.ID, &addr.Street, &addr.Number, &addr.PostalCode, &addr.CityID, &addr.NeighborhoodID, &addr.Latitude, &addr.Longitude)
		if err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		h.Address = &addr
		households = append(households, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading households: %w", err)
	}
	if len(households) == 0 {
		return households, nil
	}

	if err := r.attachMembers(ctx, households, ids); err != nil {
		return nil, err
	}
	return households, nil
}

func (r *PostgresRepository) attachMembers(ctx context.Context, households []types.Household, ids []uuid.UUID) error {
	rows, err := r.db.Query(ctx, `
        SELECT household_id, id, full_name, birth_date,
               COALESCE(occupation, ''), COALESCE(relationship, ''), primary_contact,
               COALESCE(vote_likelihood, ''), COALESCE(phone, ''), created_at
        FROM household_members
        WHERE household_id = ANY($1)
        ORDER BY created_at ASC
    `, ids)
	if err != nil {
		return fmt.Errorf("failed to list household members: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*types.Household, len(households))
	for i := range households {
		byID[households[i].ID] = &households[i]
	}

	for rows.Next() {
		var householdID uuid.UUID
		var m types.HouseholdMember
		err := rows.Scan(&householdID, &m.ID, &m.FullName, &m.BirthDate, &m.Occupation, &m.Relationship, &m.PrimaryContact, &m.VoteLikelihood, &m.Phone, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to scan household member: %w", err)
		}
		if h, ok := byID[householdID]; ok {
			h.Members = append(h.Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading household members: %w", err)
	}
	return nil
}
