package analytics

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/domain"
)

func TestPublish_FillsIDAndTimestamp(t *testing.T) {
	p := NewChannelPublisher(1, zap.NewNop())
	p.Publish(SearchQueryLogged{Query: "acme", Jurisdiction: domain.JurisdictionAll})

	select {
	case event := <-p.Events():
		if event.ID == "" {
			t.Error("event ID not generated")
		}
		if event.At.IsZero() {
			t.Error("event timestamp not set")
		}
		if event.Query != "acme" {
			t.Errorf("query = %q", event.Query)
		}
	default:
		t.Fatal("event not buffered")
	}
}

func TestPublish_KeepsCallerFields(t *testing.T) {
	p := NewChannelPublisher(1, zap.NewNop())
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.Publish(SearchQueryLogged{ID: "fixed", At: at, Query: "acme"})

	event := <-p.Events()
	if event.ID != "fixed" || !event.At.Equal(at) {
		t.Errorf("event = %+v, want caller ID and timestamp preserved", event)
	}
}

func TestPublish_DropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Publish(SearchQueryLogged{Query: "first"})
		p.Publish(SearchQueryLogged{Query: "second"}) // buffer full, dropped
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}

	event := <-p.Events()
	if event.Query != "first" {
		t.Errorf("buffered event = %q, want first", event.Query)
	}
	select {
	case extra := <-p.Events():
		t.Errorf("unexpected second event %q, want drop", extra.Query)
	default:
	}
}
