// Package civicsearch embeds the search orchestrator in-process: construct a
// Client, run searches against the configured government-data sources, no
// HTTP server required.
package civicsearch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/cache"
	"github.com/civiclens/civicsearch/internal/domain"
	"github.com/civiclens/civicsearch/internal/kv"
	kvMemory "github.com/civiclens/civicsearch/internal/kv/memory"
	kvRedis "github.com/civiclens/civicsearch/internal/kv/redis"
	"github.com/civiclens/civicsearch/internal/source"
	"github.com/civiclens/civicsearch/internal/source/checkbook"
	"github.com/civiclens/civicsearch/internal/source/fec"
	"github.com/civiclens/civicsearch/internal/source/nysethics"
	"github.com/civiclens/civicsearch/internal/source/senatelda"
	searchuc "github.com/civiclens/civicsearch/internal/usecase/search"
)

// Re-exported domain types so embedders need not import internal paths.
type (
	// SearchRequest identifies one logical search.
	SearchRequest = domain.SearchRequest
	// SearchResponse is the merged, deduplicated answer.
	SearchResponse = domain.SearchResponse
	// SearchResult is the canonical record shape.
	SearchResult = domain.SearchResult
	// Jurisdiction scopes a search to one level of government.
	Jurisdiction = domain.Jurisdiction
)

// Jurisdiction values.
const (
	JurisdictionNYC     = domain.JurisdictionNYC
	JurisdictionNYS     = domain.JurisdictionNYS
	JurisdictionFederal = domain.JurisdictionFederal
	JurisdictionAll     = domain.JurisdictionAll
)

// NewSearchRequest validates and constructs a search request.
func NewSearchRequest(query string, year int, j Jurisdiction) (SearchRequest, error) {
	return domain.NewSearchRequest(query, year, j)
}

type clientConfig struct {
	redisAddrs []string
	password   string
	apiKeys    map[domain.Source]string
	logger     *zap.Logger
	timeout    time.Duration
}

// Option configures the embedded client.
type Option func(*clientConfig)

// WithRedis attaches a shared Redis cache. Without it the client caches
// in-process only.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.redisAddrs = addrs
		c.password = password
	}
}

// WithAPIKey sets the credential for one source.
func WithAPIKey(src domain.Source, key string) Option {
	return func(c *clientConfig) { c.apiKeys[src] = key }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithAdapterTimeout overrides every adapter's timeout hint.
func WithAdapterTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// Client is the embedded civicsearch entry point.
type Client struct {
	search *searchuc.Service
	shared kv.Store
	local  kv.Store
	http   *http.Client
}

// New creates an embedded client with all four sources enabled.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		apiKeys: make(map[domain.Source]string),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	var shared kv.Store
	if len(cfg.redisAddrs) > 0 {
		s, err := kvRedis.NewStore(kvRedis.Config{Addrs: cfg.redisAddrs, Password: cfg.password})
		if err != nil {
			return nil, err
		}
		shared = s
	}
	local := kvMemory.NewStore()

	var primary kv.KV
	if shared != nil {
		primary = shared
	}
	cacheLayer := cache.New(primary, local, nil, cfg.logger)

	httpClient := &http.Client{}
	adapters := []source.Adapter{
		checkbook.New(checkbook.Config{
			AppToken: cfg.apiKeys[domain.SourceCheckbook],
			Client:   source.NewClient(httpClient, 0),
			Logger:   cfg.logger,
		}),
		senatelda.New(senatelda.Config{
			APIKey: cfg.apiKeys[domain.SourceSenateLDA],
			Client: source.NewClient(httpClient, 0),
			Logger: cfg.logger,
		}),
		fec.New(fec.Config{
			APIKey: cfg.apiKeys[domain.SourceFEC],
			Client: source.NewClient(httpClient, 0),
			Logger: cfg.logger,
		}),
		nysethics.New(nysethics.Config{
			AppToken: cfg.apiKeys[domain.SourceNYSEthics],
			Client:   source.NewClient(httpClient, 0),
			Logger:   cfg.logger,
		}),
	}

	svc := searchuc.New(adapters, cacheLayer, cfg.logger)
	if cfg.timeout > 0 {
		svc = svc.WithTimeoutOverride(cfg.timeout)
	}

	return &Client{search: svc, shared: shared, local: local, http: httpClient}, nil
}

// Search runs one aggregated search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	return c.search.Execute(ctx, req)
}

// Close releases the cache connections and pooled upstream connections.
func (c *Client) Close() {
	if c.shared != nil {
		c.shared.Close()
	}
	c.local.Close()
	c.http.CloseIdleConnections()
}
