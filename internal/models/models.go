package models

import (
	"path/filepath"
	"time"
)

// ReportFileName is the name of the per-folder report
const ReportFileName = "video_prompt.md"

// ImagePair represents the earliest and latest frame of one folder
type ImagePair struct {
	First string
	Last  string
}

// Folder returns the directory both frames live in
func (p ImagePair) Folder() string {
	return filepath.Dir(p.First)
}

// Media returns the frame paths in the order they are attached to a request
func (p ImagePair) Media() []string {
	return []string{p.First, p.Last}
}

// WorkItem represents a pair to be processed
type WorkItem struct {
	Pair    ImagePair
	PairNum int
	Total   int
}

// BackendResult is the outcome of querying a single backend for one pair.
// Text holds the extracted answer when Err is nil.
type BackendResult struct {
	Backend  string
	Text     string
	Err      error
	Duration time.Duration
}

// OK reports whether the backend produced an answer
func (r BackendResult) OK() bool {
	return r.Err == nil
}

// AnswerRecord maps a backend identifier to its extracted answer.
// Backends that failed are absent.
type AnswerRecord map[string]string

// Answers collects the successful results into an AnswerRecord
func Answers(results []BackendResult) AnswerRecord {
	record := make(AnswerRecord, len(results))
	for _, r := range results {
		if r.OK() {
			record[r.Backend] = r.Text
		}
	}
	return record
}

// RunSummary counts what happened during one pipeline run. Unless the run
// is cancelled, every pair lands in exactly one of Reports, ReportFailures
// or PairFailures.
type RunSummary struct {
	Pairs           int
	Reports         int
	ReportFailures  int
	PairFailures    int
	BackendCalls    int
	BackendFailures int
}
