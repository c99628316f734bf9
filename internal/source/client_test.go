package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetJSON_StatusTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "ok", status: http.StatusOK},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrUpstreamRateLimited},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrUpstreamUnavailable},
		{name: "unexpected status", status: http.StatusForbidden, wantErr: ErrMalformedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			client := NewClient(srv.Client(), 0)
			body, err := client.GetJSON(context.Background(), srv.URL, nil)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("GetJSON: %v", err)
				}
				if string(body) != `{"ok":true}` {
					t.Errorf("body = %q", body)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGetJSON_ForwardsHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), 0)
	header := http.Header{}
	header.Set("Authorization", "Token secret")
	if _, err := client.GetJSON(context.Background(), srv.URL, header); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if gotAuth != "Token secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestGetJSON_DeadlineMapsToTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewClient(srv.Client(), 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetJSON(ctx, srv.URL, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}
