package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code and message so that wrapped
// sentinels compare equal with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain error codes
const (
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeExtractionMiss   = "EXTRACTION_MISS"
	ErrCodeUnresolvedParent = "UNRESOLVED_PARENT"
	ErrCodeEmbeddingFailure = "EMBEDDING_PROVIDER_FAILURE"
	ErrCodePersistence      = "PERSISTENCE_FAILURE"
	ErrCodeUnknownGenre     = "UNKNOWN_GENRE"
)

// Validation errors
var (
	ErrEmptyText                  = NewDomainError(ErrCodeValidation, "document text is empty")
	ErrInvalidGenre               = NewDomainError(ErrCodeValidation, "invalid genre")
	ErrInvalidDocumentStatus      = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrInvalidStatusTransition    = NewDomainError(ErrCodeValidation, "invalid document status transition")
	ErrInvalidEmbeddingJobStatus  = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrMissingRequiredField       = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmbeddingDimensionMismatch = NewDomainError(ErrCodeValidation, "embedding count does not match chunk count")
)

// Not found errors
var (
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
	ErrEmbeddingJobNotFound = NewDomainError(ErrCodeNotFound, "embedding job not found")
)

// Pipeline failures
var (
	ErrEmbeddingProvider = NewDomainError(ErrCodeEmbeddingFailure, "embedding provider failed")
	ErrPersistence       = NewDomainError(ErrCodePersistence, "document persistence failed")
)

// Warning is a non-fatal condition recorded while ingesting a document.
// Warnings never abort ingestion; they are stored alongside the document.
type Warning struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	SectionOrder int    `json:"section_order,omitempty"`
}

// NewWarning creates a warning not tied to a specific section.
func NewWarning(code, message string) Warning {
	return Warning{Code: code, Message: message}
}
