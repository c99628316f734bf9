package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Year bounds accepted in a search request. Zero means "any year".
const (
	MinYear = 1970
	MaxYear = 2100
)

// SearchRequest identifies one logical search. Immutable once constructed.
type SearchRequest struct {
	query        string
	year         int
	jurisdiction Jurisdiction
}

// NewSearchRequest validates and constructs a search request.
// The query is trimmed; an empty result is rejected. year is 0 (any) or a
// value within [MinYear, MaxYear].
func NewSearchRequest(query string, year int, jurisdiction Jurisdiction) (SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchRequest{}, fmt.Errorf("%w: query must not be empty", ErrInvalidRequest)
	}
	if year != 0 && (year < MinYear || year > MaxYear) {
		return SearchRequest{}, fmt.Errorf("%w: year %d out of range", ErrInvalidRequest, year)
	}
	if jurisdiction == "" {
		jurisdiction = JurisdictionAll
	}
	switch jurisdiction {
	case JurisdictionNYC, JurisdictionNYS, JurisdictionFederal, JurisdictionAll:
	default:
		return SearchRequest{}, fmt.Errorf("%w: unknown jurisdiction %q", ErrInvalidRequest, jurisdiction)
	}
	return SearchRequest{query: query, year: year, jurisdiction: jurisdiction}, nil
}

// Query returns the trimmed query text.
func (r SearchRequest) Query() string { return r.query }

// Year returns the year scope, 0 meaning any.
func (r SearchRequest) Year() int { return r.year }

// Jurisdiction returns the jurisdiction scope.
func (r SearchRequest) Jurisdiction() Jurisdiction { return r.jurisdiction }

// NormalizedQuery lowercases the query and collapses internal whitespace,
// so cache keys survive incidental formatting differences.
func (r SearchRequest) NormalizedQuery() string {
	return NormalizeQuery(r.query)
}

// Fingerprint derives the deterministic composite cache key component from
// (normalized query, year, jurisdiction). Stable across process restarts.
func (r SearchRequest) Fingerprint() string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%s", r.NormalizedQuery(), r.year, r.jurisdiction))
	return hex.EncodeToString(h[:])
}

// NormalizeQuery lowercases s and collapses runs of whitespace to single
// spaces.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
