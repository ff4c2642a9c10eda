package batch

import (
	"fmt"
	"math"
	"time"
)

// ItemStatus is the processing outcome of a single file in an ingestion batch.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	name   string
	status ItemStatus
	chunks int
	err    error
}

// NewOK creates a successful result.
func NewOK(name string, chunks int) FileResult {
	return FileResult{name: name, status: StatusOK, chunks: chunks}
}

// NewSkipped records a file that was deliberately not ingested.
func NewSkipped(name string, reason error) FileResult {
	return FileResult{name: name, status: StatusSkipped, err: reason}
}

// NewError creates a failed result.
func NewError(name string, err error) FileResult {
	return FileResult{name: name, status: StatusError, err: err}
}

// Name returns the file name.
func (r FileResult) Name() string { return r.name }

// Status returns the processing outcome.
func (r FileResult) Status() ItemStatus { return r.status }

// Chunks returns how many chunks were stored.
func (r FileResult) Chunks() int { return r.chunks }

// Err returns the error, if any.
func (r FileResult) Err() error { return r.err }

// Summary aggregates the results of one ingestion run.
type Summary struct {
	Status          string    `json:"status"`
	FilesProcessed  int       `json:"files_processed"`
	FilesFailed     int       `json:"files_failed"`
	ChunksCreated   int       `json:"chunks_created"`
	TotalSizeMB     float64   `json:"total_size_mb"`
	ProcessingTimeS float64   `json:"processing_time_seconds"`
	FailedFiles     []string  `json:"failed_files"`
	Timestamp       time.Time `json:"timestamp"`
}

// Summarize folds file results into a Summary. Status is "Success" unless
// nothing was processed and something failed.
func Summarize(results []FileResult, totalBytes int64, started, finished time.Time) Summary {
	s := Summary{
		FailedFiles: []string{},
		TotalSizeMB: round2(float64(totalBytes) / 1024 / 1024),
		Timestamp:   finished.UTC(),
	}
	s.ProcessingTimeS = round2(finished.Sub(started).Seconds())

	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.FilesProcessed++
			s.ChunksCreated += r.chunks
		case StatusError:
			s.FilesFailed++
			s.FailedFiles = append(s.FailedFiles, fmt.Sprintf("%s: %v", r.name, r.err))
		}
	}

	switch {
	case s.FilesProcessed == 0 && s.FilesFailed == 0:
		s.Status = "No valid files to process"
	case s.FilesProcessed == 0:
		s.Status = "Error: all files failed"
	default:
		s.Status = "Success"
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
