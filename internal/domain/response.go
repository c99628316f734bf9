package domain

// SearchStats carries per-request analytics metadata.
type SearchStats struct {
	TotalResults    int   `json:"total_results"`
	ExecutionTimeMS int64 `json:"execution_time_ms"`
	CacheHit        bool  `json:"cache_hit"`
}

// SearchResponse is the merged, deduplicated answer for one request.
// TotalHits and Statuses carry an entry for every queried source, including
// failed ones (count 0, non-ok status), so callers can tell "zero results"
// from "source failed". Immutable after construction.
type SearchResponse struct {
	Results   []SearchResult          `json:"results"`
	TotalHits map[Source]int          `json:"total_hits"`
	Statuses  map[Source]SourceStatus `json:"statuses"`
	Stats     SearchStats             `json:"search_stats"`
}
