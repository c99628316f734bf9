// Package source defines the capability contract every government-data
// adapter implements, the adapter error taxonomy, and the helpers shared by
// adapter variants (paced HTTP client, amount/date parsing).
package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/civiclens/civicsearch/internal/domain"
)

// RawRecord is one source-specific payload returned by an adapter call.
// It is opaque to the orchestrator until normalized.
type RawRecord struct {
	Source domain.Source
	Data   json.RawMessage
}

// Adapter wraps one external government-data source behind a uniform search
// contract. The orchestrator is polymorphic over the adapter set and assumes
// nothing beyond this interface. Adapters perform outbound network I/O only;
// shared cache and rate-limit state stay out of their reach.
type Adapter interface {
	// Name returns the stable source identifier.
	Name() domain.Source
	// Jurisdiction returns the level of government this source covers.
	Jurisdiction() domain.Jurisdiction
	// Search returns raw records matching query, optionally scoped to year
	// (0 = any). Failures use the package sentinel taxonomy.
	Search(ctx context.Context, query string, year int) ([]RawRecord, error)
	// Normalize maps one raw record into the canonical result schema.
	Normalize(raw RawRecord) (domain.SearchResult, error)
	// DefaultTimeout hints how long the orchestrator should wait for this
	// source before abandoning the call.
	DefaultTimeout() time.Duration
}
