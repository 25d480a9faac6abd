package incidents

import "errors"

// Lookup errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
)

// Input errors.
var (
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrInvalidFilter    = errors.New("invalid severity filter")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// Seed errors.
var (
	ErrInvalidSeed = errors.New("invalid seed data")
	ErrDuplicateID = errors.New("duplicate incident id")
)
