package types

import "github.com/google/uuid"

// City matches the cities table structure. Rows are immutable once referenced.
type City struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StateCode string    `json:"state_code"`
}

// Neighborhood matches the neighborhoods table structure. NormalizedName is
// recomputed from Name on every save and is the fuzzy-match/dedup key.
// RegionName is a free-text label; region membership is resolved by
// case-insensitive name match within the same city, not by foreign key.
type Neighborhood struct {
	ID             uuid.UUID `json:"id"`
	CityID         uuid.UUID `json:"city_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	RegionName     *string   `json:"region_name,omitempty"`
}

// NormalizedKey exposes the precomputed dedup key for similarity scoring.
func (n Neighborhood) NormalizedKey() string { return n.NormalizedName }

// Region is an administrative grouping label for neighborhoods of one city.
type Region struct {
	ID     uuid.UUID `json:"id"`
	CityID uuid.UUID `json:"city_id"`
	Name   string    `json:"name"`
}

// RegionSummary is a region plus how many neighborhoods currently carry its
// name. ID is nil for free-text labels that have no registered region row.
type RegionSummary struct {
	ID                *uuid.UUID `json:"id"`
	Name              string     `json:"name"`
	NeighborhoodCount int64      `json:"neighborhood_count"`
}

type CreateRegionRequest struct {
	Name string `json:"name"`
}

type AssignRegionRequest struct {
	NeighborhoodIDs []uuid.UUID `json:"neighborhood_ids"`
}

// UpdateNeighborhoodsRegionRequest relabels neighborhoods with a region by
// id, by free-text name, or clears the label when both are omitted.
type UpdateNeighborhoodsRegionRequest struct {
	NeighborhoodIDs []uuid.UUID `json:"neighborhood_ids"`
	RegionID        *uuid.UUID  `json:"region_id,omitempty"`
	RegionName      string      `json:"region_name,omitempty"`
}

type MergeNeighborhoodsRequest struct {
	SurvivorID   uuid.UUID   `json:"survivor_id"`
	DuplicateIDs []uuid.UUID `json:"duplicate_ids"`
}

// MergeNeighborhoodsResponse reports the surviving neighborhood and how
// many addresses were repointed to it.
type MergeNeighborhoodsResponse struct {
	Survivor           Neighborhood `json:"survivor"`
	RepointedAddresses int64        `json:"repointed_addresses"`
}
