package types

import "errors"

// Error taxonomy for the address resolution pipeline. Validation and
// mismatch errors map to 4xx responses; ErrPostalUnavailable marks provider
// degradation so the caller can decide whether it is fatal for the request.
var (
	ErrInvalidPostalCode  = errors.New("postal code must contain exactly 8 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found")
	ErrPostalUnavailable  = errors.New("postal provider unavailable")
	ErrPostalCityMismatch = errors.New("postal code does not belong to the selected city")

	ErrMissingNeighborhood  = errors.New("postal code did not resolve to a neighborhood")
	ErrCityNotFound         = errors.New("city not found")
	ErrRegionNotFound       = errors.New("region not found")
	ErrNeighborhoodNotFound = errors.New("neighborhood not found")
	ErrRegionExists         = errors.New("region already registered for the city")

	ErrEmptyMergeSelection = errors.New("no duplicate neighborhoods selected")
	ErrCrossCityMismatch   = errors.New("neighborhoods must belong to the same city")

	ErrMissingMembers        = errors.New("at least one household member is required")
	ErrMissingPrimaryContact = errors.New("a primary contact must be set for the household")
)
