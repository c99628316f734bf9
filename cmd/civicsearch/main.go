package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/analytics"
	"github.com/civiclens/civicsearch/internal/cache"
	"github.com/civiclens/civicsearch/internal/config"
	"github.com/civiclens/civicsearch/internal/domain"
	"github.com/civiclens/civicsearch/internal/kv"
	kvMemory "github.com/civiclens/civicsearch/internal/kv/memory"
	kvRedis "github.com/civiclens/civicsearch/internal/kv/redis"
	logpkg "github.com/civiclens/civicsearch/internal/logger"
	"github.com/civiclens/civicsearch/internal/metrics"
	"github.com/civiclens/civicsearch/internal/ratelimit"
	"github.com/civiclens/civicsearch/internal/source"
	"github.com/civiclens/civicsearch/internal/source/checkbook"
	"github.com/civiclens/civicsearch/internal/source/fec"
	"github.com/civiclens/civicsearch/internal/source/nysethics"
	"github.com/civiclens/civicsearch/internal/source/senatelda"
	chiTransport "github.com/civiclens/civicsearch/internal/transport/chi"
	searchuc "github.com/civiclens/civicsearch/internal/usecase/search"
	"github.com/civiclens/civicsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting civicsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Shared store is optional: without addrs the service runs on the
	// process-local cache only.
	var shared kv.Store
	if len(cfg.Cache.Addrs) > 0 {
		shared, err = kvRedis.NewStore(kvRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create shared store", zap.Error(err))
		}
		defer shared.Close()

		ctx := context.Background()
		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := shared.WaitForReady(ctx, readiness); err != nil {
			// Degraded start: the cache layer and limiter fall back locally.
			logger.Warn("Shared store not ready, starting degraded", zap.Error(err))
		} else {
			logger.Info("Connected to shared store")
		}
	} else {
		logger.Info("No shared store configured, running process-local")
	}

	local := kvMemory.NewStore()
	defer local.Close()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	cacheLayer := cache.New(storeOrNil(shared), local, metrics.CacheFallbackTotal, logger)
	limiter := ratelimit.New(counterOrNil(shared), metrics.RateLimitDeniedTotal, logger)

	// Build adapters — composition root owns the HTTP pools.
	adapters, closers := buildAdapters(cfg, logger)
	if len(adapters) == 0 {
		logger.Fatal("No sources enabled")
	}
	defer func() {
		for _, c := range closers {
			c.CloseIdleConnections()
		}
	}()

	publisher := analytics.NewChannelPublisher(cfg.Analytics.Buffer, logger)

	searchSvc := searchuc.New(adapters, cacheLayer, logger).
		WithPublisher(publisher).
		WithTimeoutOverride(time.Duration(cfg.Search.AdapterTimeoutSec) * time.Second).
		WithTTLs(
			time.Duration(cfg.Cache.SourceTTLSec)*time.Second,
			time.Duration(cfg.Cache.CompositeTTLSec)*time.Second,
		)

	infos := make([]chiTransport.SourceInfo, 0, len(adapters))
	for _, a := range adapters {
		infos = append(infos, chiTransport.SourceInfo{Name: a.Name(), Jurisdiction: a.Jurisdiction()})
	}
	server := chiTransport.NewServer(searchSvc, pingerOrNil(shared), infos, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(chiTransport.RateLimitMiddleware(
		limiter, cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSec)*time.Second,
	))
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// connectionCloser releases pooled upstream connections on shutdown.
type connectionCloser interface {
	CloseIdleConnections()
}

// buildAdapters assembles the enabled adapter set in merge priority order.
func buildAdapters(cfg config.Config, logger *zap.Logger) ([]source.Adapter, []connectionCloser) {
	var adapters []source.Adapter
	var closers []connectionCloser

	newClient := func(src config.SourceConfig) *source.Client {
		c := source.NewClient(&http.Client{}, src.RPS)
		closers = append(closers, c)
		return c
	}
	timeout := func(src config.SourceConfig) time.Duration {
		return time.Duration(src.TimeoutSec) * time.Second
	}

	if src := cfg.Sources[string(domain.SourceCheckbook)]; src.IsEnabled() {
		adapters = append(adapters, checkbook.New(checkbook.Config{
			BaseURL:  src.BaseURL,
			AppToken: src.APIKey,
			Timeout:  timeout(src),
			Client:   newClient(src),
			Logger:   logger,
		}))
	}
	if src := cfg.Sources[string(domain.SourceSenateLDA)]; src.IsEnabled() {
		adapters = append(adapters, senatelda.New(senatelda.Config{
			BaseURL: src.BaseURL,
			APIKey:  src.APIKey,
			Timeout: timeout(src),
			Client:  newClient(src),
			Logger:  logger,
		}))
	}
	if src := cfg.Sources[string(domain.SourceFEC)]; src.IsEnabled() {
		adapters = append(adapters, fec.New(fec.Config{
			BaseURL: src.BaseURL,
			APIKey:  src.APIKey,
			Timeout: timeout(src),
			Client:  newClient(src),
			Logger:  logger,
		}))
	}
	if src := cfg.Sources[string(domain.SourceNYSEthics)]; src.IsEnabled() {
		adapters = append(adapters, nysethics.New(nysethics.Config{
			BaseURL:  src.BaseURL,
			AppToken: src.APIKey,
			Timeout:  timeout(src),
			Client:   newClient(src),
			Logger:   logger,
		}))
	}

	return adapters, closers
}

// Pass nil interfaces (not typed nil pointers!) when no shared store exists.
// Go gotcha: a nil *Store wrapped in an interface != nil.

func storeOrNil(s kv.Store) kv.KV {
	if s == nil {
		return nil
	}
	return s
}

func counterOrNil(s kv.Store) kv.Counter {
	if s == nil {
		return nil
	}
	return s
}

func pingerOrNil(s kv.Store) kv.Pinger {
	if s == nil {
		return nil
	}
	return s
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
