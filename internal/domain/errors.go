package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrTagNotFound signals a missing tag.
	ErrTagNotFound = errors.New("tag not found")
	// ErrValidation signals invalid input to a mutation or listing.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidQuery signals a search query that cannot be parsed or executed.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
	// ErrIndexLocked signals that another writer holds the index write lock.
	ErrIndexLocked = errors.New("index locked by another writer")
	// ErrMalformedMessage signals a queue payload that is not a document id.
	ErrMalformedMessage = errors.New("malformed queue message")
)
