package searchr

import "github.com/kailas-cloud/searchr/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrTagNotFound      = domain.ErrTagNotFound
	ErrValidation       = domain.ErrValidation
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrNotImplemented   = domain.ErrNotImplemented
)
