package domain

import "time"

// SourceStatus is the terminal state of one adapter call within a request.
type SourceStatus string

// Adapter call outcomes.
const (
	StatusOK          SourceStatus = "ok"
	StatusTimeout     SourceStatus = "timeout"
	StatusError       SourceStatus = "error"
	StatusRateLimited SourceStatus = "rate_limited"
)

// AdapterOutcome records the result of one adapter call for one request.
// Produced once per adapter per request, never mutated afterwards.
type AdapterOutcome struct {
	Source  Source
	Status  SourceStatus
	Results []SearchResult
	Elapsed time.Duration
	// Err is the failure detail for non-ok statuses, empty otherwise.
	Err string
}
