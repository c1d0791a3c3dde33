package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller may not access the project
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Ingestion pipeline errors
var (
	// ErrInvalidDocument rejects empty or unusable document content
	ErrInvalidDocument = fmt.Errorf("%w: invalid document", ErrInvalidInput)

	// ErrInvalidChunkConfig rejects a chunk size/overlap combination
	ErrInvalidChunkConfig = fmt.Errorf("%w: invalid chunk config", ErrInvalidInput)

	// ErrClassificationDegraded marks a chunk whose classifier call failed.
	// It never aborts an analysis on its own.
	ErrClassificationDegraded = errors.New("classification degraded")

	// ErrRetrievalUnavailable indicates the vector backend could not serve a query
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrMaterialization indicates an artifact or record write failed during confirmation
	ErrMaterialization = errors.New("materialization failed")

	// ErrEnrollment indicates the knowledge base could not index confirmed content
	ErrEnrollment = errors.New("enrollment failed")

	// ErrAnalysisFailed is the single document-level failure surfaced to callers
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrItemLocked indicates another confirmation currently holds the item
	ErrItemLocked = errors.New("item is being confirmed elsewhere")

	// ErrNotSuggestion indicates the item already left the suggestion state
	ErrNotSuggestion = errors.New("item is not a suggestion")
)
