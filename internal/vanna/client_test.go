package vanna

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAskForwardsQuery(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sql": "SELECT COUNT(*) FROM invoices"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key", 5*time.Second)
	resp, err := c.Ask(context.Background(), "how many invoices?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if gotPath != "/api/chat" {
		t.Errorf("path = %q, want /api/chat", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["query"] != "how many invoices?" {
		t.Errorf("forwarded body = %v", gotBody)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"sql": "SELECT COUNT(*) FROM invoices"}` {
		t.Errorf("body = %s", resp.Body)
	}
}

func TestAskOmitsAuthWhenKeyEmpty(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "", 5*time.Second).Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestAskErrorStatusHasNilBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "", 5*time.Second).Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask should not error on upstream 5xx: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if resp.Body != nil {
		t.Errorf("body should be nil on error status, got %s", resp.Body)
	}
}

func TestAskTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before calling

	if _, err := New(srv.URL, "", time.Second).Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected a transport error against a closed server")
	}
}
