package types

import (
	"time"

	"github.com/google/uuid"
)

// Household is the registered family unit at one address.
// NeighborhoodName is a denormalized copy of the resolved neighborhood name,
// kept for listing/filtering; it must be refreshed when neighborhoods merge.
type Household struct {
	ID               uuid.UUID         `json:"id"`
	AddressSummary   string            `json:"address_summary"`
	NeighborhoodName string            `json:"neighborhood_name"`
	Address          *Address          `json:"address,omitempty"`
	Members          []HouseholdMember `json:"members"`
	CreatedAt        time.Time         `json:"created_at"`
}

// HouseholdMember is one registered person of a household.
type HouseholdMember struct {
	ID             uuid.UUID  `json:"id"`
	FullName       string     `json:"full_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Occupation     string     `json:"occupation,omitempty"`
	Relationship   string     `json:"relationship,omitempty"`
	PrimaryContact bool       `json:"primary_contact"`
	VoteLikelihood string     `json:"vote_likelihood,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RegisterHouseholdRequest is the payload for household registration.
// RegionHint is an optional operator-supplied region label; the neighborhood
// text always comes from the postal lookup.
type RegisterHouseholdRequest struct {
	CityID     uuid.UUID               `json:"city_id"`
	PostalCode string                  `json:"postal_code"`
	Street     string                  `json:"street"`
	Number     string                  `json:"number"`
	RegionHint string                  `json:"region,omitempty"`
	Members    []RegisterMemberRequest `json:"members"`
}

// RegisterMemberRequest is one member of a registration payload.
type RegisterMemberRequest struct {
	FullName       string     `json:"full_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Occupation     string     `json:"occupation,omitempty"`
	Relationship   string     `json:"relationship,omitempty"`
	PrimaryContact bool       `json:"primary_contact"`
	VoteLikelihood string     `json:"vote_likelihood,omitempty"`
	Phone          string     `json:"phone,omitempty"`
}

// HouseholdFilter narrows household listings. All fields are optional.
type HouseholdFilter struct {
	CityID       *uuid.UUID `json:"city_id,omitempty"`
	Region       string     `json:"region,omitempty"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	Street       string     `json:"street,omitempty"`
	PostalCode   string     `json:"postal_code,omitempty"`
	MemberName   string     `json:"member_name,omitempty"`
	Term         string     `json:"term,omitempty"`
}

// HouseholdList is a filtered page of households plus summary counters.
type HouseholdList struct {
	Households      []Household `json:"households"`
	Total           int64       `json:"total"`
	PrimaryContacts int64       `json:"primary_contacts"`
	NewThisWeek     int64       `json:"new_this_week"`
}
