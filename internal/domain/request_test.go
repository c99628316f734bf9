package domain

import (
	"strings"
	"testing"
)

func TestNewSearchRequest_Validation(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		year         int
		jurisdiction Jurisdiction
		wantErr      bool
	}{
		{"valid", "Acme Corp", 2023, JurisdictionNYC, false},
		{"valid zero year", "Acme Corp", 0, JurisdictionAll, false},
		{"empty query", "", 2023, JurisdictionAll, true},
		{"whitespace query", "   \t  ", 2023, JurisdictionAll, true},
		{"year too small", "acme", 1900, JurisdictionAll, true},
		{"year too large", "acme", 3000, JurisdictionAll, true},
		{"unknown jurisdiction", "acme", 0, Jurisdiction("Mars"), true},
		{"empty jurisdiction becomes all", "acme", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSearchRequest(tt.query, tt.year, tt.jurisdiction)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Query() != strings.TrimSpace(tt.query) {
				t.Errorf("query = %q", req.Query())
			}
		})
	}
}

func TestSearchRequest_EmptyJurisdictionDefaultsToAll(t *testing.T) {
	req, err := NewSearchRequest("acme", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Jurisdiction() != JurisdictionAll {
		t.Errorf("jurisdiction = %q, want %q", req.Jurisdiction(), JurisdictionAll)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a, _ := NewSearchRequest("Acme   Corp", 2023, JurisdictionNYC)
	b, _ := NewSearchRequest("  acme corp ", 2023, JurisdictionNYC)

	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("normalization-equal requests must share a fingerprint:\n%s\n%s",
			a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprint_DistinguishesScope(t *testing.T) {
	base, _ := NewSearchRequest("acme", 2023, JurisdictionNYC)
	otherYear, _ := NewSearchRequest("acme", 2022, JurisdictionNYC)
	otherJuris, _ := NewSearchRequest("acme", 2023, JurisdictionFederal)
	otherQuery, _ := NewSearchRequest("acme inc", 2023, JurisdictionNYC)

	for name, other := range map[string]SearchRequest{
		"year":         otherYear,
		"jurisdiction": otherJuris,
		"query":        otherQuery,
	} {
		if base.Fingerprint() == other.Fingerprint() {
			t.Errorf("fingerprint must differ by %s", name)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Acme Corp", "acme corp"},
		{"  ACME \t CORP  ", "acme corp"},
		{"one", "one"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseJurisdiction(t *testing.T) {
	tests := []struct {
		in   string
		want Jurisdiction
		ok   bool
	}{
		{"", JurisdictionAll, true},
		{"all", JurisdictionAll, true},
		{"NYC", JurisdictionNYC, true},
		{"nyc", JurisdictionNYC, true},
		{"NYS", JurisdictionNYS, true},
		{"Federal", JurisdictionFederal, true},
		{"federal", JurisdictionFederal, true},
		{"europe", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseJurisdiction(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseJurisdiction(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestJurisdiction_Matches(t *testing.T) {
	if !JurisdictionAll.Matches(JurisdictionNYC) {
		t.Error("all must match NYC")
	}
	if !JurisdictionNYC.Matches(JurisdictionNYC) {
		t.Error("NYC must match itself")
	}
	if JurisdictionNYC.Matches(JurisdictionFederal) {
		t.Error("NYC must not match Federal")
	}
}
