package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/logger"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeNotFound               ErrorCode = "not_found"
	CodeUnsupportedFileType    ErrorCode = "unsupported_file_type"
	CodeFileTooLarge           ErrorCode = "file_too_large"
	CodeEmptyContent           ErrorCode = "empty_content"
	CodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeGenerationFailed       ErrorCode = "generation_failed"
	CodeIndexUnavailable       ErrorCode = "index_unavailable"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type sentinelMapping struct {
	err    error
	status int
	code   ErrorCode
}

var sentinels = []sentinelMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, CodeUnsupportedFileType},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, CodeFileTooLarge},
	{domain.ErrEmptyContent, http.StatusBadRequest, CodeEmptyContent},
	{domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError},
	{domain.ErrGenerationFailed, http.StatusBadGateway, CodeGenerationFailed},
	{domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// handleDomainError maps a domain sentinel to its status and code. The
// client sees only the sentinel text, never the wrapped details.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, m := range sentinels {
		if errors.Is(err, m.err) {
			log.Warn("domain error", zap.Error(err))
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
