package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a content type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrUnreadableSource indicates a source could not be fetched or parsed,
	// or yielded no recoverable text.
	ErrUnreadableSource = errors.New("unreadable source")

	// ErrSourceTooLarge indicates a source exceeded the configured size cap.
	ErrSourceTooLarge = fmt.Errorf("%w: source too large", ErrUnreadableSource)

	// ErrDocumentNotFound indicates the document is unknown or not yet ready.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)

	// ErrBundleNotFound indicates an unknown project bundle.
	ErrBundleNotFound = fmt.Errorf("bundle %w", ErrNotFound)

	// Provider Errors.

	// ErrTimeout indicates an external operation exceeded its time bound.
	ErrTimeout = errors.New("operation timed out")

	// ErrProviderUnavailable indicates an embedding or LLM provider could not be reached.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse indicates a provider answered with unusable output.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generation uses the template strategy only.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval uses lexical similarity only.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Generation Errors.

	// ErrGenerationUnavailable indicates the AI strategy failed and produced nothing usable.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrInvalidFilePath indicates a generated file path is unsafe.
	ErrInvalidFilePath = errors.New("invalid file path")
)

// InvalidFilePathError names the generated file that failed path validation.
type InvalidFilePathError struct {
	Path   string
	Reason string
}

func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid file path %q: %s", e.Path, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidFilePath).
func (e *InvalidFilePathError) Unwrap() error {
	return ErrInvalidFilePath
}

// Error codes returned to callers of the driving ports.
const (
	CodeUnreadableSource      = "unreadable_source"
	CodeSourceTooLarge        = "source_too_large"
	CodeDocumentNotFound      = "document_not_found"
	CodeBundleNotFound        = "bundle_not_found"
	CodeTimeout               = "timeout"
	CodeGenerationUnavailable = "generation_unavailable"
	CodeInvalidFilePath       = "invalid_file_path"
	CodeInvalidInput          = "invalid_input"
	CodeInternal              = "internal"
)

// ErrorCode maps an error to a stable code for the calling layer.
// More specific errors are checked first.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceTooLarge):
		return CodeSourceTooLarge
	case errors.Is(err, ErrUnreadableSource):
		return CodeUnreadableSource
	case errors.Is(err, ErrDocumentNotFound):
		return CodeDocumentNotFound
	case errors.Is(err, ErrBundleNotFound):
		return CodeBundleNotFound
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrGenerationUnavailable):
		return CodeGenerationUnavailable
	case errors.Is(err, ErrInvalidFilePath):
		return CodeInvalidFilePath
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedType):
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}
