package domain

import (
	"testing"
	"time"
)

func ptrF(v float64) *float64 { return &v }

func ptrT(t time.Time) *time.Time { return &t }

func TestNormalizeEntityName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Acme Corp", "acme"},
		{"ACME CORP.", "acme"},
		{"Acme Corporation", "acme"},
		{"Acme, Inc.", "acme"},
		{"Acme Holdings LLC", "acme holdings"},
		{"Johnson & Johnson", "johnson johnson"},
		{"Corp", "corp"}, // a lone designator is a name, not a suffix
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEntityName(tt.in); got != tt.want {
			t.Errorf("NormalizeEntityName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDuplicateKey_RecordIDWins(t *testing.T) {
	a := SearchResult{Source: SourceFEC, RecordID: "SA123", EntityName: "Acme"}
	b := SearchResult{Source: SourceFEC, RecordID: "SA123", EntityName: "Totally Different"}
	if a.DuplicateKey() != b.DuplicateKey() {
		t.Error("records sharing an external id must share a duplicate key")
	}

	c := SearchResult{Source: SourceFEC, RecordID: "SA999", EntityName: "Acme"}
	if a.DuplicateKey() == c.DuplicateKey() {
		t.Error("different external ids must not collide")
	}
}

func TestDuplicateKey_TupleFallback(t *testing.T) {
	date := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	a := SearchResult{Source: SourceCheckbook, EntityName: "Acme Corp", Amount: ptrF(1000), Date: ptrT(date)}
	b := SearchResult{Source: SourceCheckbook, EntityName: "ACME CORP.", Amount: ptrF(1000), Date: ptrT(date)}
	if a.DuplicateKey() != b.DuplicateKey() {
		t.Error("name normalization must collapse formatting variants")
	}

	diffAmount := SearchResult{Source: SourceCheckbook, EntityName: "Acme Corp", Amount: ptrF(2000), Date: ptrT(date)}
	if a.DuplicateKey() == diffAmount.DuplicateKey() {
		t.Error("different amounts must not collide")
	}

	diffSource := SearchResult{Source: SourceNYSEthics, EntityName: "Acme Corp", Amount: ptrF(1000), Date: ptrT(date)}
	if a.DuplicateKey() == diffSource.DuplicateKey() {
		t.Error("different sources must not collide")
	}

	noDate := SearchResult{Source: SourceCheckbook, EntityName: "Acme Corp", Amount: ptrF(1000)}
	if a.DuplicateKey() == noDate.DuplicateKey() {
		t.Error("missing date must not collide with a dated record")
	}
}

func TestCompleteness(t *testing.T) {
	sparse := SearchResult{Source: SourceCheckbook, Title: "t"}
	full := SearchResult{
		Source: SourceCheckbook, Title: "t", Description: "d", EntityName: "e",
		Agency: "a", URL: "u", RecordType: "contract", RecordID: "1",
		Amount: ptrF(5), Date: ptrT(time.Now()), Year: 2023,
	}
	if sparse.Completeness() >= full.Completeness() {
		t.Errorf("completeness: sparse=%d full=%d", sparse.Completeness(), full.Completeness())
	}
}

func TestPriorityIndex(t *testing.T) {
	if PriorityIndex(SourceCheckbook) != 0 {
		t.Error("checkbook must have top priority")
	}
	if PriorityIndex(Source("unknown")) != len(SourcePriority) {
		t.Error("unknown sources must sort last")
	}
}
