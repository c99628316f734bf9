// Package analytics defines the collaborator boundary for search history:
// the orchestrator emits SearchQueryLogged events here; persisting them is
// an external concern.
package analytics

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/domain"
)

// SearchQueryLogged describes one completed search for the external
// analytics/history store.
type SearchQueryLogged struct {
	ID              string              `json:"id"`
	Query           string              `json:"query"`
	Year            int                 `json:"year,omitempty"`
	Jurisdiction    domain.Jurisdiction `json:"jurisdiction"`
	TotalResults    int                 `json:"total_results"`
	SourcesQueried  []domain.Source     `json:"sources_queried"`
	ExecutionTimeMS int64               `json:"execution_time_ms"`
	At              time.Time           `json:"at"`
}

// Publisher receives search events. Implementations must not block the
// caller.
type Publisher interface {
	Publish(event SearchQueryLogged)
}

// ChannelPublisher logs each event and offers it on a bounded channel for an
// external consumer to drain. A full channel drops the event: search latency
// is never held hostage to analytics.
type ChannelPublisher struct {
	events chan SearchQueryLogged
	logger *zap.Logger
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int, logger *zap.Logger) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelPublisher{
		events: make(chan SearchQueryLogged, buffer),
		logger: logger,
	}
}

// Publish records the event. Never blocks.
func (p *ChannelPublisher) Publish(event SearchQueryLogged) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	p.logger.Info("search_query_logged",
		zap.String("event_id", event.ID),
		zap.String("query", event.Query),
		zap.Int("year", event.Year),
		zap.String("jurisdiction", string(event.Jurisdiction)),
		zap.Int("total_results", event.TotalResults),
		zap.Int("sources_queried", len(event.SourcesQueried)),
		zap.Int64("execution_time_ms", event.ExecutionTimeMS),
	)

	select {
	case p.events <- event:
	default:
		p.logger.Warn("analytics buffer full, dropping event", zap.String("event_id", event.ID))
	}
}

// Events exposes the drain side of the buffer.
func (p *ChannelPublisher) Events() <-chan SearchQueryLogged {
	return p.events
}
