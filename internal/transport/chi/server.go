package chi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/logger"
	"github.com/kailas-cloud/coderag/internal/usecase/health"
	"github.com/kailas-cloud/coderag/internal/usecase/ingest"
	"github.com/kailas-cloud/coderag/internal/usecase/pipeline"
	"github.com/kailas-cloud/coderag/internal/version"
)

// Defaults for request limits.
const (
	DefaultPageSize    = 50
	DefaultMaxPageSize = 500
	DefaultSearchTopK  = 10
	MaxTopK            = 100
	DefaultMaxUpload   = 200 << 20

	multipartMemory = 32 << 20
)

// Server holds the HTTP handlers.
type Server struct {
	assistant Assistant
	ingestor  Ingestor
	sessions  Sessions
	catalog   Catalog
	health    HealthChecker
	hybrid    HybridSearcher
	logger    *zap.Logger
	upgrader  websocket.Upgrader

	defaultPage int
	maxPage     int
	maxUpload   int64
}

// NewServer creates an HTTP API server.
func NewServer(
	assistant Assistant,
	ingestor Ingestor,
	sessions Sessions,
	catalog Catalog,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		assistant: assistant,
		ingestor:  ingestor,
		sessions:  sessions,
		catalog:   catalog,
		health:    health,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		defaultPage: DefaultPageSize,
		maxPage:     DefaultMaxPageSize,
		maxUpload:   DefaultMaxUpload,
	}
}

// WithPagination sets the admin listing page sizes.
func (s *Server) WithPagination(def, maxSize int) *Server {
	if def > 0 {
		s.defaultPage = def
	}
	if maxSize > 0 {
		s.maxPage = maxSize
	}
	return s
}

// WithMaxUpload caps the multipart upload body in bytes.
func (s *Server) WithMaxUpload(n int64) *Server {
	if n > 0 {
		s.maxUpload = n
	}
	return s
}

// WithHybrid enables mode=hybrid on the admin search endpoint.
func (s *Server) WithHybrid(h HybridSearcher) *Server {
	s.hybrid = h
	return s
}

type documentRequest struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type historyResponse struct {
	SessionID    string                 `json:"session_id"`
	Messages     []conversation.Message `json:"messages"`
	MessageCount int                    `json:"message_count"`
}

type sessionClearResponse struct {
	Status          string `json:"status"`
	MessagesCleared int    `json:"messages_cleared"`
}

type clearResponse struct {
	Status        string `json:"status"`
	ChunksDeleted int    `json:"chunks_deleted"`
	Message       string `json:"message"`
}

type chunkItem struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   domchunk.Metadata `json:"metadata"`
	Distance   *float64          `json:"distance,omitempty"`
	Similarity *float64          `json:"similarity,omitempty"`
	Score      *float64          `json:"score,omitempty"`
}

type documentsResponse struct {
	TotalDocuments int         `json:"total_documents"`
	Documents      []chunkItem `json:"documents"`
	Limit          int         `json:"limit"`
	Offset         int         `json:"offset"`
}

type searchResponse struct {
	Query        string      `json:"query"`
	Mode         string      `json:"mode"`
	ResultsCount int         `json:"results_count"`
	Results      []chunkItem `json:"results"`
}

type explainResponse struct {
	Query  string `json:"query"`
	Prompt string `json:"prompt"`
}

type healthResponse struct {
	Status  health.Status                 `json:"status"`
	Checks  map[string]health.CheckResult `json:"checks"`
	Version string                        `json:"version"`
}

// Search modes.
const (
	ModeVector  = "vector"
	ModeKeyword = "keyword"
	ModeHybrid  = "hybrid"
)

// Status handles GET /api/code-assistant/status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Status(r.Context()))
}

// ClearDocuments handles DELETE /api/code-assistant/documents.
func (s *Server) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	res := s.assistant.ClearAll(r.Context())
	if res.Status != pipeline.StatusSuccess {
		writeError(w, http.StatusInternalServerError, CodeInternalError, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{
		Status:        "cleared",
		ChunksDeleted: res.DeletedChunks,
		Message:       res.Message,
	})
}

// Ingest handles POST /api/ingest with multipart "files" parts.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "at least one file is required in the \"files\" field")
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("open %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("read %s: %v", fh.Filename, err))
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	writeJSON(w, http.StatusOK, s.ingestor.IngestFiles(r.Context(), files))
}

// IngestStats handles GET /api/ingest/stats.
func (s *Server) IngestStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.ingestor.Stats(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// AddDocument handles POST /api/documents.
func (s *Server) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "id and content are required")
		return
	}

	res := s.assistant.AddDocument(r.Context(), req.ID, req.Content, domchunk.Metadata(req.Metadata))
	switch res.Status {
	case pipeline.StatusSuccess:
		writeJSON(w, http.StatusCreated, res)
	case pipeline.StatusWarning:
		writeJSON(w, http.StatusOK, res)
	default:
		writeJSON(w, http.StatusInternalServerError, res)
	}
}

// History handles GET /api/sessions/{session_id}/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "session_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	msgs := s.sessions.History(id)
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, Messages: msgs, MessageCount: len(msgs)})
}

// ClearHistory handles DELETE /api/sessions/{session_id}/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "session_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionClearResponse{Status: "cleared", MessagesCleared: s.sessions.Clear(id)})
}

// ListDocuments handles GET /api/admin/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", s.defaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if limit <= 0 || limit > s.maxPage {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("limit must be between 1 and %d", s.maxPage))
		return
	}
	if offset < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "offset must not be negative")
		return
	}

	items, total, err := s.catalog.List(r.Context(), offset, limit)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsResponse{
		TotalDocuments: total,
		Documents:      toItems(items, ""),
		Limit:          limit,
		Offset:         offset,
	})
}

// Search handles GET /api/admin/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, topK, ok := s.queryAndTopK(w, r)
	if !ok {
		return
	}
	mode, err := queryString(r, "mode", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if mode == "" {
		mode = ModeVector
	}

	var results []result.Result
	switch mode {
	case ModeVector:
		results, err = s.assistant.Search(r.Context(), q, topK)
	case ModeKeyword:
		results, err = s.catalog.KeywordSearch(r.Context(), q, topK)
	case ModeHybrid:
		if s.hybrid == nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "hybrid search is not enabled")
			return
		}
		results, err = s.hybrid.Hybrid(r.Context(), q, topK)
	default:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "mode must be vector, keyword or hybrid")
		return
	}
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:        q,
		Mode:         mode,
		ResultsCount: len(results),
		Results:      toItems(results, mode),
	})
}

// Explain handles GET /api/admin/explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	q, topK, ok := s.queryAndTopK(w, r)
	if !ok {
		return
	}
	sessionID, err := queryString(r, "session_id", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	p, err := s.assistant.Explain(r.Context(), sessionID, q, topK)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{Query: q, Prompt: p})
}

func (s *Server) queryAndTopK(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	q, err := queryString(r, "q", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return "", 0, false
	}
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "q must not be empty")
		return "", 0, false
	}
	topK, err := queryInt(r, "top_k", DefaultSearchTopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return "", 0, false
	}
	if topK <= 0 || topK > MaxTopK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
		return "", 0, false
	}
	return q, topK, true
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == health.Unhealthy {
		status = http.StatusServiceUnavailable
		logger.FromContext(r.Context()).Warn("Unhealthy", zap.Any("checks", report.Checks))
	}
	writeJSON(w, status, healthResponse{Status: report.Status, Checks: report.Checks, Version: version.Version})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// toItems renders results. Vector hits carry distance and similarity,
// keyword and hybrid hits carry score, listings carry neither.
func toItems(rs []result.Result, mode string) []chunkItem {
	items := make([]chunkItem, len(rs))
	for i, r := range rs {
		item := chunkItem{ID: r.ID(), Content: r.Content(), Metadata: r.Metadata()}
		switch mode {
		case ModeVector:
			d, sim := r.Distance(), r.Similarity()
			item.Distance, item.Similarity = &d, &sim
		case ModeKeyword, ModeHybrid:
			score := r.Score()
			item.Score = &score
		}
		items[i] = item
	}
	return items
}
