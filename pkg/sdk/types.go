package sdk

import "time"

// File is one file to ingest.
type File struct {
	Name string
	Data []byte
}

// Status reports knowledge-base readiness.
type Status struct {
	VectorstoreHealthy bool           `json:"vectorstore_healthy"`
	TotalChunks        int            `json:"total_chunks"`
	FileTypes          map[string]int `json:"file_types"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	EmbeddingProvider  string         `json:"embedding_provider"`
	IsReady            bool           `json:"is_ready"`
	Error              string         `json:"error,omitempty"`
}

// ClearResult is the outcome of Clear.
type ClearResult struct {
	Status        string `json:"status"`
	ChunksDeleted int    `json:"chunks_deleted"`
	Message       string `json:"message"`
}

// IngestSummary aggregates one ingestion run.
type IngestSummary struct {
	Status          string    `json:"status"`
	FilesProcessed  int       `json:"files_processed"`
	FilesFailed     int       `json:"files_failed"`
	ChunksCreated   int       `json:"chunks_created"`
	TotalSizeMB     float64   `json:"total_size_mb"`
	ProcessingTimeS float64   `json:"processing_time_seconds"`
	FailedFiles     []string  `json:"failed_files"`
	Timestamp       time.Time `json:"timestamp"`
}

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok", "degraded", "error"
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// frame is one streamed answer fragment.
type frame struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Complete  bool   `json:"complete"`
	Error     string `json:"error"`
}
