package services

import "errors"

// Service-level error taxonomy. Handlers translate these to HTTP statuses;
// anything else is a storage failure and becomes a logged 500.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrSelfFollow = errors.New("cannot follow yourself")
	ErrValidation = errors.New("validation failed")
)
