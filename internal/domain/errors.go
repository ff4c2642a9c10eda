package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFileType signals a filename the classifier does not accept.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge signals a file above the ingestion size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyContent signals a file or document with no content.
	ErrEmptyContent = errors.New("empty content")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a language model failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrIndexUnavailable signals the vector index is unreachable or missing.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// DimensionMismatchError wraps ErrVectorDimMismatch with both sides of the comparison.
type DimensionMismatchError struct {
	Collection int
	Embedder   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: collection expects %d, embedder produces %d",
		ErrVectorDimMismatch.Error(), e.Collection, e.Embedder)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(collection, embedder int) error {
	return &DimensionMismatchError{Collection: collection, Embedder: embedder}
}
