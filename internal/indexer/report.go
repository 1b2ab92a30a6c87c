package indexer

import (
	"errors"
	"fmt"

	"athena-kb/internal/document"
)

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	Path   string
	Chunks []document.Chunk
	Hash   string // SHA-256 hex of the file as read before parsing
	Err    error
}

// Report aggregates a directory ingestion. Files are in lexicographic path
// order and Chunks concatenates the chunks of successful files in that order.
type Report struct {
	Root   string
	Files  []FileResult
	Chunks []document.Chunk
	Stats  ChunkStats
}

// Succeeded returns the number of files ingested without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the files that could not be ingested.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err joins the per-file errors, or returns nil when every file succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// FileFailure is the JSON form of a failed file.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ReportSummary is the JSON form of a Report without chunk bodies.
type ReportSummary struct {
	Root      string        `json:"root"`
	Files     int           `json:"files"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Chunks    int           `json:"chunks"`
	Stats     ChunkStats    `json:"stats"`
	Failures  []FileFailure `json:"failures"`
}

// Summary condenses the report for logging and API responses.
func (r *Report) Summary() ReportSummary {
	failed := r.Failed()
	failures := make([]FileFailure, 0, len(failed))
	for _, f := range failed {
		failures = append(failures, FileFailure{Path: f.Path, Error: f.Err.Error()})
	}

	return ReportSummary{
		Root:      r.Root,
		Files:     len(r.Files),
		Succeeded: r.Succeeded(),
		Failed:    len(failed),
		Chunks:    len(r.Chunks),
		Stats:     r.Stats,
		Failures:  failures,
	}
}

func (s ReportSummary) String() string {
	return fmt.Sprintf("%d files (%d failed), %d chunks", s.Files, s.Failed, s.Chunks)
}
