package ta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/suzaku-admin/internal/config"
)

const okBody = `{"return_code":0,"data":{"headers":["role_id"]}}
["R1"]
`

func newTestClient(host string) *Client {
	c := NewClient(&config.ThinkingDataConfig{
		APIHost:             host,
		ProjectToken:        "test-token",
		QueryTimeoutSeconds: 5,
	})
	return c.WithRetryDelays([]time.Duration{time.Millisecond, time.Millisecond, time.Millisecond})
}

func TestClientQueryOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/querySql" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form failed: %v", err)
		}
		if r.PostForm.Get("token") != "test-token" {
			t.Errorf("unexpected token: %q", r.PostForm.Get("token"))
		}
		if r.PostForm.Get("sql") == "" {
			t.Error("missing sql param")
		}
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(res.Rows) != 1 || res.Row(0).Str("role_id") != "R1" {
		t.Fatalf("unexpected result: %+v", res.Rows)
	}
}

func TestClientRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("query failed after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("unexpected rows: %d", len(res.Rows))
	}
}

func TestClientRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, ErrHTTPServerStatus) {
		t.Fatalf("exhausted error should wrap last failure, got %v", err)
	}
	// 初次 + 3 次重试
	if got := calls.Load(); got != 4 {
		t.Fatalf("expected 4 attempts, got %d", got)
	}
}

func TestClientClientErrorTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrHTTPClientStatus) {
		t.Fatalf("expected ErrHTTPClientStatus, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx must not retry, got %d attempts", got)
	}
}

func TestClientAPIErrorTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"return_code":-3001,"return_message":"sql syntax error"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), "SELECT bogus")
	if !errors.Is(err, ErrAPIStatus) {
		t.Fatalf("expected ErrAPIStatus, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("platform error must not retry, got %d attempts", got)
	}
}

func TestClientContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv.URL).Query(ctx, "SELECT 1")
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
