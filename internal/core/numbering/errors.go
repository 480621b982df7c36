package numbering

import "errors"

var (
	// ErrConfigurationMissing is returned by template stores when a tenant has
	// no stored template for a kind. Callers resolve it to DefaultTemplate.
	ErrConfigurationMissing = errors.New("numbering template not configured")

	// ErrMissingScope means the template has a TripSeq segment but no trip was given.
	ErrMissingScope = errors.New("numbering template requires a trip")

	// ErrScopeNotFound means the trip does not exist for the tenant.
	ErrScopeNotFound = errors.New("trip not found")

	// ErrInvalidTemplate wraps every structural template problem.
	ErrInvalidTemplate = errors.New("invalid numbering template")

	// ErrUnknownSegment is returned when decoding an unrecognized segment type.
	ErrUnknownSegment = errors.New("unknown segment type")
)
