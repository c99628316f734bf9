package fec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/civiclens/civicsearch/internal/source"
)

func TestSearch_MissingKeyReturnsNoResults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	records, err := a.Search(context.Background(), "acme", 2024)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if hits.Load() != 0 {
		t.Error("keyless adapter still called the upstream")
	}
}

func TestSearch_CycleRounding(t *testing.T) {
	tests := []struct {
		year      int
		wantCycle string
	}{
		{year: 2023, wantCycle: "2024"},
		{year: 2024, wantCycle: "2024"},
		{year: 0, wantCycle: ""},
	}
	for _, tc := range tests {
		var gotCycle, gotName, gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCycle = r.URL.Query().Get("two_year_transaction_period")
			gotName = r.URL.Query().Get("contributor_name")
			gotKey = r.URL.Query().Get("api_key")
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))

		a := New(Config{BaseURL: srv.URL, APIKey: "k"})
		if _, err := a.Search(context.Background(), "acme", tc.year); err != nil {
			t.Fatalf("Search(year=%d): %v", tc.year, err)
		}
		srv.Close()

		if gotCycle != tc.wantCycle {
			t.Errorf("year %d: cycle = %q, want %q", tc.year, gotCycle, tc.wantCycle)
		}
		if gotName != "acme" || gotKey != "k" {
			t.Errorf("year %d: params = (%q, %q)", tc.year, gotName, gotKey)
		}
	}
}

func TestNormalize(t *testing.T) {
	a := New(Config{APIKey: "k"})
	r, err := a.Normalize(source.RawRecord{Data: []byte(`{
		"sub_id": "4112020201100123456",
		"contributor_name": "DOE, JANE",
		"contribution_receipt_amount": 2800,
		"contribution_receipt_date": "2020-10-01",
		"committee": {"name": "Friends of Example"}
	}`)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Amount == nil || *r.Amount != 2800 {
		t.Errorf("amount = %v", r.Amount)
	}
	if r.EntityName != "DOE, JANE" || r.Agency != "Friends of Example" {
		t.Errorf("entity/agency = %q/%q", r.EntityName, r.Agency)
	}
	if r.Year != 2020 || r.RecordID != "4112020201100123456" {
		t.Errorf("year/id = %d/%q", r.Year, r.RecordID)
	}
	if r.RecordType != "campaign_finance" {
		t.Errorf("record type = %q", r.RecordType)
	}
}
