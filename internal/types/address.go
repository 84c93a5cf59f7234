package types

import "github.com/google/uuid"

// Address matches the addresses table structure. NeighborhoodID is nullable:
// it stays empty when no confident neighborhood match or creation occurred.
// Latitude/Longitude are nullable because geocoding is best-effort.
type Address struct {
	ID             uuid.UUID  `json:"id"`
	Street         string     `json:"street"`
	Number         string     `json:"number"`
	PostalCode     string     `json:"postal_code"`
	CityID         uuid.UUID  `json:"city_id"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
}

// Coordinate is a geocoded latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PostalRecord is the canonical record returned by the postal code provider.
// Coordinates is non-nil only when the provider embeds them.
type PostalRecord struct {
	PostalCode   string      `json:"cep"`
	Street       string      `json:"street"`
	Neighborhood string      `json:"neighborhood"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	CityIBGECode string      `json:"city_ibge"`
	Coordinates  *Coordinate `json:"coordinates,omitempty"`
}

// ResolvedAddress is the outcome of the address resolution pipeline handed
// back to the household registration flow.
type ResolvedAddress struct {
	Street       string        `json:"street"`
	Number       string        `json:"number"`
	PostalCode   string        `json:"postal_code"`
	Neighborhood *Neighborhood `json:"neighborhood,omitempty"`
	Coordinates  *Coordinate   `json:"coordinates,omitempty"`
}
