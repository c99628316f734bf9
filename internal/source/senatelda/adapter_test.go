package senatelda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civiclens/civicsearch/internal/source"
)

func TestSearch_QueryParams(t *testing.T) {
	var gotSearch, gotYear, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		gotYear = r.URL.Query().Get("filing_year")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"results":[{"filing_uuid":"u1"},{"filing_uuid":"u2"}]}`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL, APIKey: "k"})
	records, err := a.Search(context.Background(), "acme", 2022)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if gotSearch != "acme" || gotYear != "2022" {
		t.Errorf("params = (%q, %q)", gotSearch, gotYear)
	}
	if gotAuth != "Token k" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestSearch_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	if _, err := a.Search(context.Background(), "acme", 0); !errors.Is(err, source.ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestNormalize_IncomeFallsBackToExpenses(t *testing.T) {
	a := New(Config{})

	r, err := a.Normalize(source.RawRecord{Data: []byte(`{
		"filing_uuid": "u1",
		"filing_year": 2022,
		"income": "$50,000.00",
		"registrant": {"name": "Lobby LLC"},
		"client": {"name": "Acme Corp"},
		"filing_type_display": "Q1"
	}`)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Amount == nil || *r.Amount != 50000 {
		t.Errorf("amount = %v, want income", r.Amount)
	}
	if r.EntityName != "Acme Corp" || r.Agency != "Lobby LLC" {
		t.Errorf("entity/agency = %q/%q", r.EntityName, r.Agency)
	}
	if r.Year != 2022 || r.RecordType != "lobbying" {
		t.Errorf("year/type = %d/%s", r.Year, r.RecordType)
	}

	r, err = a.Normalize(source.RawRecord{Data: []byte(`{
		"filing_uuid": "u2",
		"expenses": "12000"
	}`)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Amount == nil || *r.Amount != 12000 {
		t.Errorf("amount = %v, want expenses fallback", r.Amount)
	}
}

func TestNormalize_YearFromPostedDate(t *testing.T) {
	a := New(Config{})
	r, err := a.Normalize(source.RawRecord{Data: []byte(`{
		"filing_uuid": "u3",
		"dt_posted": "2021-06-30T10:00:00Z"
	}`)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Year != 2021 {
		t.Errorf("year = %d, want 2021 from dt_posted", r.Year)
	}
}
