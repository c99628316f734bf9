package source

import "errors"

// Adapter error taxonomy. Each variant is distinct because the orchestrator
// records a different per-source status for it.
var (
	// ErrTimeout signals the upstream call exceeded its deadline.
	ErrTimeout = errors.New("source: timeout")
	// ErrUpstreamUnavailable signals a connection failure or 5xx answer.
	ErrUpstreamUnavailable = errors.New("source: upstream unavailable")
	// ErrUpstreamRateLimited signals the upstream throttled us (429).
	ErrUpstreamRateLimited = errors.New("source: upstream rate limited")
	// ErrMalformedResponse signals an unparseable upstream payload.
	ErrMalformedResponse = errors.New("source: malformed response")
)
