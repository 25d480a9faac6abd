package dashboard

import "errors"

// Controller errors.
var (
	ErrFormClosed     = errors.New("incident form is not open")
	ErrFormSubmitting = errors.New("incident form is submitting")
	ErrUnknownField   = errors.New("unknown form field")
	ErrDuplicateID    = errors.New("incident id already exists")
)
