package sdk

import (
	"fmt"

	"github.com/kailas-cloud/coderag/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrUnsupportedFileType    = domain.ErrUnsupportedFileType
	ErrFileTooLarge           = domain.ErrFileTooLarge
	ErrEmptyContent           = domain.ErrEmptyContent
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
)

var sentinelByCode = map[string]error{
	"not_found":                ErrNotFound,
	"validation_failed":        ErrInvalidInput,
	"unsupported_file_type":    ErrUnsupportedFileType,
	"file_too_large":           ErrFileTooLarge,
	"empty_content":            ErrEmptyContent,
	"vector_dim_mismatch":      ErrVectorDimMismatch,
	"embedding_provider_error": ErrEmbeddingProviderError,
	"generation_failed":        ErrGenerationFailed,
	"index_unavailable":        ErrIndexUnavailable,
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coderag: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the response code back to its sentinel.
func (e *APIError) Unwrap() error { return sentinelByCode[e.Code] }
