package domain

import (
	"fmt"
	"strings"
	"time"
)

// SearchResult is the canonical record shape every adapter normalizes into.
// It is the only shape the merger and downstream consumers understand.
type SearchResult struct {
	Source      Source     `json:"source"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	EntityName  string     `json:"entity_name"`
	Agency      string     `json:"agency,omitempty"`
	URL         string     `json:"url,omitempty"`
	RecordType  string     `json:"record_type"`
	Year        int        `json:"year,omitempty"`
	// RecordID is the upstream record identifier when the source exposes one.
	// When present it alone determines duplicate identity.
	RecordID string `json:"record_id,omitempty"`
}

// DuplicateKey returns the identity under which two results are considered
// the same underlying fact: the external record id when present, otherwise
// (source, normalized entity name, amount, date).
func (r SearchResult) DuplicateKey() string {
	if r.RecordID != "" {
		return string(r.Source) + "#id:" + r.RecordID
	}
	amount := "-"
	if r.Amount != nil {
		amount = fmt.Sprintf("%.2f", *r.Amount)
	}
	date := "-"
	if r.Date != nil {
		date = r.Date.Format("2006-01-02")
	}
	return string(r.Source) + "#" + NormalizeEntityName(r.EntityName) + "|" + amount + "|" + date
}

// Completeness counts populated fields. The merger keeps the most complete
// record within a duplicate group.
func (r SearchResult) Completeness() int {
	n := 0
	for _, s := range []string{r.Title, r.Description, r.EntityName, r.Agency, r.URL, r.RecordType, r.RecordID} {
		if s != "" {
			n++
		}
	}
	if r.Amount != nil {
		n++
	}
	if r.Date != nil {
		n++
	}
	if r.Year != 0 {
		n++
	}
	return n
}

// entitySuffixes are corporate designators stripped during entity-name
// normalization so "Acme Corp" and "ACME CORP." collapse to one identity.
var entitySuffixes = []string{
	"incorporated", "corporation", "company", "limited",
	"inc", "corp", "llc", "llp", "ltd", "co", "lp",
}

// NormalizeEntityName lowercases, strips punctuation, and drops trailing
// corporate designators so name-based dedup tolerates formatting drift
// across sources.
func NormalizeEntityName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '&' || r == '-' || r == '\'':
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	for len(words) > 1 && isEntitySuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isEntitySuffix(w string) bool {
	for _, s := range entitySuffixes {
		if w == s {
			return true
		}
	}
	return false
}
