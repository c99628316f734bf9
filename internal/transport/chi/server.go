// Package chi exposes the search orchestrator over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/domain"
	searchuc "github.com/civiclens/civicsearch/internal/usecase/search"
)

// pinger checks shared-store connectivity for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// SourceInfo describes one enabled adapter for GET /sources.
type SourceInfo struct {
	Name         domain.Source       `json:"name"`
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
}

// Server wires HTTP routes onto the search service.
type Server struct {
	search  *searchuc.Service
	store   pinger // nil when running local-only
	sources []SourceInfo
	logger  *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(search *searchuc.Service, store pinger, sources []SourceInfo, logger *zap.Logger) *Server {
	return &Server{search: search, store: store, sources: sources, logger: logger}
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/search", s.handleSearch)
	r.Get("/sources", s.handleSources)
	r.Get("/health", s.handleHealth)
}

// searchRequestBody is the POST /search payload.
type searchRequestBody struct {
	Query        string `json:"query"`
	Year         int    `json:"year,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	jurisdiction, ok := domain.ParseJurisdiction(body.Jurisdiction)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "Unknown jurisdiction: "+body.Jurisdiction)
		return
	}

	req, err := domain.NewSearchRequest(body.Query, body.Year, jurisdiction)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	resp, err := s.search.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sources": s.sources})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, codeUnavailable, "shared cache unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
