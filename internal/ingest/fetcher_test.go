package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPortedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	f := NewCollyFetcher()
	f.MaxRetries = 0

	// httptest always binds an explicit port, so this exercises the
	// host-with-port case directly.
	page, err := f.Fetch(context.Background(), srv.URL+"/grant")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("status = %d", page.StatusCode)
	}
	if len(page.Body) == 0 {
		t.Error("empty body")
	}
}

func TestFetchCanceledAfterCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewCollyFetcher()
	f.MaxRetries = 0

	// Must not panic when cancellation and a successful response race.
	page, err := f.Fetch(ctx, srv.URL+"/grant")
	if err == nil && page == nil {
		t.Fatal("nil page without error")
	}
}

func TestFetchCanceledDuringRetryBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	f := NewCollyFetcher()
	f.MaxRetries = 5

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL+"/grant")
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("fetch ignored cancellation, took %v", elapsed)
	}
}
