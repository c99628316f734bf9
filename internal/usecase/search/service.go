// Package search orchestrates one user query across all enabled source
// adapters: concurrent fan-out with per-adapter timeouts and caching,
// fan-in with partial-failure semantics, dedup/merge, and response assembly.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/analytics"
	"github.com/civiclens/civicsearch/internal/cache"
	"github.com/civiclens/civicsearch/internal/domain"
	"github.com/civiclens/civicsearch/internal/metrics"
	"github.com/civiclens/civicsearch/internal/source"
)

// Adapter timeout clamp. Adapter hints outside this range are bounded so a
// misconfigured source can neither spin forever nor flap instantly.
const (
	minAdapterTimeout = time.Second
	maxAdapterTimeout = 30 * time.Second
)

// Service is the search orchestrator.
type Service struct {
	adapters  []source.Adapter // enumeration order fixes dedup tie-breaks
	cache     Cache
	publisher analytics.Publisher
	logger    *zap.Logger

	timeoutOverride time.Duration
	sourceTTL       time.Duration
	compositeTTL    time.Duration
}

// New creates the orchestrator. The adapter slice order is the deterministic
// first-seen order used by the merger.
func New(adapters []source.Adapter, c Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		adapters:     adapters,
		cache:        c,
		logger:       logger,
		sourceTTL:    cache.SourceTTL,
		compositeTTL: cache.CompositeTTL,
	}
}

// WithPublisher attaches the analytics event publisher.
func (s *Service) WithPublisher(p analytics.Publisher) *Service {
	s.publisher = p
	return s
}

// WithTimeoutOverride forces one timeout for every adapter, ignoring their
// hints. Zero keeps per-adapter defaults.
func (s *Service) WithTimeoutOverride(d time.Duration) *Service {
	s.timeoutOverride = d
	return s
}

// WithTTLs overrides the source and composite cache TTLs.
func (s *Service) WithTTLs(sourceTTL, compositeTTL time.Duration) *Service {
	if sourceTTL > 0 {
		s.sourceTTL = sourceTTL
	}
	if compositeTTL > 0 {
		s.compositeTTL = compositeTTL
	}
	return s
}

// cachedResponse is the composite cache payload: everything about a search
// except the per-call stats.
type cachedResponse struct {
	Results   []domain.SearchResult                 `json:"results"`
	TotalHits map[domain.Source]int                 `json:"total_hits"`
	Statuses  map[domain.Source]domain.SourceStatus `json:"statuses"`
}

// Execute runs one search request end to end. Adapter failures degrade to
// zero-result statuses; only an invalid request fails the call.
func (s *Service) Execute(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	if req.Query() == "" {
		return domain.SearchResponse{}, fmt.Errorf("%w: empty query", domain.ErrInvalidRequest)
	}

	start := time.Now()
	key := cache.CompositeKey(req.Fingerprint())

	data, hit, err := s.cache.GetOrCompute(ctx, key, s.compositeTTL, func(ctx context.Context) ([]byte, error) {
		payload := s.runSearch(ctx, req)
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode response: %w", err)
		}
		return encoded, nil
	})
	if err != nil {
		return domain.SearchResponse{}, err
	}

	if hit {
		metrics.CacheTotal.WithLabelValues("composite", "hit").Inc()
	} else {
		metrics.CacheTotal.WithLabelValues("composite", "miss").Inc()
	}

	var payload cachedResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.SearchResponse{}, fmt.Errorf("decode cached response: %w", err)
	}
	if payload.Results == nil {
		payload.Results = []domain.SearchResult{}
	}

	resp := domain.SearchResponse{
		Results:   payload.Results,
		TotalHits: payload.TotalHits,
		Statuses:  payload.Statuses,
		Stats: domain.SearchStats{
			TotalResults:    len(payload.Results),
			ExecutionTimeMS: time.Since(start).Milliseconds(),
			CacheHit:        hit,
		},
	}

	s.publish(req, resp)
	return resp, nil
}

// runSearch fans the request out to every enabled adapter and assembles the
// cacheable portion of the response.
func (s *Service) runSearch(ctx context.Context, req domain.SearchRequest) cachedResponse {
	enabled := s.enabledAdapters(req.Jurisdiction())
	outcomes := s.fanOut(ctx, enabled, req)

	merged := Merge(outcomes)
	metrics.SearchResultsMerged.Observe(float64(len(merged)))

	totalHits := make(map[domain.Source]int, len(outcomes))
	statuses := make(map[domain.Source]domain.SourceStatus, len(outcomes))
	for _, o := range outcomes {
		statuses[o.Source] = o.Status
		if o.Status == domain.StatusOK {
			totalHits[o.Source] = len(o.Results)
		} else {
			// Failed sources report 0 rather than being omitted, so callers
			// can tell "no results" from "source failed" via the status map.
			totalHits[o.Source] = 0
		}
	}

	return cachedResponse{Results: merged, TotalHits: totalHits, Statuses: statuses}
}

// enabledAdapters returns the adapters matching the request jurisdiction, in
// registry order.
func (s *Service) enabledAdapters(j domain.Jurisdiction) []source.Adapter {
	enabled := make([]source.Adapter, 0, len(s.adapters))
	for _, a := range s.adapters {
		if j.Matches(a.Jurisdiction()) {
			enabled = append(enabled, a)
		}
	}
	return enabled
}

// fanOut launches one goroutine per adapter and collects outcomes in adapter
// enumeration order. Each adapter is isolated: a timeout or failure in one
// never cancels or delays its siblings, and the total wait is bounded by the
// slowest permitted timeout, not the slowest adapter.
func (s *Service) fanOut(
	ctx context.Context, enabled []source.Adapter, req domain.SearchRequest,
) []domain.AdapterOutcome {
	outcomes := make([]domain.AdapterOutcome, len(enabled))

	done := make(chan int, len(enabled))
	for i, a := range enabled {
		go func(i int, a source.Adapter) {
			outcomes[i] = s.callAdapter(ctx, a, req)
			done <- i
		}(i, a)
	}
	for range enabled {
		<-done
	}

	return outcomes
}

// callAdapter runs one adapter behind its own cache entry and timeout.
func (s *Service) callAdapter(
	ctx context.Context, a source.Adapter, req domain.SearchRequest,
) domain.AdapterOutcome {
	start := time.Now()
	name := a.Name()
	key := cache.SourceKey(string(name), req.NormalizedQuery(), req.Year())

	data, hit, err := s.cache.GetOrCompute(ctx, key, s.sourceTTL, func(ctx context.Context) ([]byte, error) {
		results, err := s.fetch(ctx, a, req)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("encode results: %w", err)
		}
		return encoded, nil
	})

	elapsed := time.Since(start)
	metrics.SourceRequestDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())

	if err != nil {
		status := classifyAdapterErr(err)
		metrics.SourceOutcomesTotal.WithLabelValues(string(name), string(status)).Inc()
		s.logger.Warn("source failed",
			zap.String("source", string(name)),
			zap.String("status", string(status)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return domain.AdapterOutcome{Source: name, Status: status, Elapsed: elapsed, Err: err.Error()}
	}

	cacheResult := "miss"
	if hit {
		cacheResult = "hit"
	}
	metrics.CacheTotal.WithLabelValues("source", cacheResult).Inc()

	var results []domain.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		metrics.SourceOutcomesTotal.WithLabelValues(string(name), string(domain.StatusError)).Inc()
		return domain.AdapterOutcome{
			Source: name, Status: domain.StatusError, Elapsed: elapsed,
			Err: fmt.Sprintf("decode cached results: %v", err),
		}
	}

	metrics.SourceOutcomesTotal.WithLabelValues(string(name), string(domain.StatusOK)).Inc()
	return domain.AdapterOutcome{
		Source: name, Status: domain.StatusOK, Results: results, Elapsed: elapsed,
	}
}

// fetch runs Search+Normalize under the adapter's timeout. The search itself
// runs in an inner goroutine so even an adapter that ignores its context is
// abandoned at the deadline rather than awaited.
func (s *Service) fetch(
	ctx context.Context, a source.Adapter, req domain.SearchRequest,
) ([]domain.SearchResult, error) {
	timeout := s.adapterTimeout(a)
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type answer struct {
		records []source.RawRecord
		err     error
	}
	ch := make(chan answer, 1)
	go func() {
		records, err := a.Search(tctx, req.Query(), req.Year())
		ch <- answer{records: records, err: err}
	}()

	var records []source.RawRecord
	select {
	case <-tctx.Done():
		return nil, fmt.Errorf("%w: %s after %s", source.ErrTimeout, a.Name(), timeout)
	case ans := <-ch:
		if ans.err != nil {
			return nil, ans.err
		}
		records = ans.records
	}

	results := make([]domain.SearchResult, 0, len(records))
	for _, raw := range records {
		r, err := a.Normalize(raw)
		if err != nil {
			// One bad record never fails the source.
			s.logger.Warn("skipping malformed record",
				zap.String("source", string(a.Name())), zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// adapterTimeout resolves the effective deadline for one adapter.
func (s *Service) adapterTimeout(a source.Adapter) time.Duration {
	t := a.DefaultTimeout()
	if s.timeoutOverride > 0 {
		t = s.timeoutOverride
	}
	if t < minAdapterTimeout {
		t = minAdapterTimeout
	}
	if t > maxAdapterTimeout {
		t = maxAdapterTimeout
	}
	return t
}

// classifyAdapterErr maps the adapter error taxonomy onto per-source statuses.
func classifyAdapterErr(err error) domain.SourceStatus {
	switch {
	case errors.Is(err, source.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.StatusTimeout
	case errors.Is(err, source.ErrUpstreamRateLimited):
		return domain.StatusRateLimited
	default:
		return domain.StatusError
	}
}

// publish emits the SearchQueryLogged event. Fire-and-forget.
func (s *Service) publish(req domain.SearchRequest, resp domain.SearchResponse) {
	if s.publisher == nil {
		return
	}
	queried := make([]domain.Source, 0, len(resp.TotalHits))
	for _, a := range s.adapters {
		if _, ok := resp.TotalHits[a.Name()]; ok {
			queried = append(queried, a.Name())
		}
	}
	s.publisher.Publish(analytics.SearchQueryLogged{
		Query:           req.Query(),
		Year:            req.Year(),
		Jurisdiction:    req.Jurisdiction(),
		TotalResults:    resp.Stats.TotalResults,
		SourcesQueried:  queried,
		ExecutionTimeMS: resp.Stats.ExecutionTimeMS,
	})
}
