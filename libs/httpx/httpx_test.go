package httpx

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "k"); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("third attempt should be limited")
	}
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Fatal("window should reset")
	}
}

func TestMemoryLimiter_BoundedKeys(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()
	for i := 0; i < maxTrackedKeys+10; i++ {
		_, _ = l.Allow(ctx, fmt.Sprintf("ip-%d", i))
	}
	if n := l.windows.Len(); n != maxTrackedKeys {
		t.Fatalf("expected %d tracked keys, got %d", maxTrackedKeys, n)
	}
	if ok, _ := l.Allow(ctx, "ip-0"); !ok {
		t.Fatal("evicted key should start a fresh window")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var logs bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		RateLimit(NewMemoryLimiter(1, time.Minute), "login", slog.New(slog.NewJSONHandler(&logs, nil))))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A rotated forwarded header from an untrusted peer is the same client.
	req.Header.Set("X-Forwarded-For", "10.0.0.99")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies("10.0.0.0/8, 192.168.1.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ParseTrustedProxies("not-an-ip"); err == nil {
		t.Fatal("expected parse error")
	}

	cases := []struct {
		name    string
		remote  string
		fwd     string
		trusted []netip.Prefix
		want    string
	}{
		{"no proxies configured", "203.0.113.7:5000", "1.2.3.4", nil, "203.0.113.7"},
		{"untrusted peer ignores header", "203.0.113.7:5000", "1.2.3.4", trusted, "203.0.113.7"},
		{"trusted peer uses forwarded client", "10.1.2.3:5000", "198.51.100.9", trusted, "198.51.100.9"},
		{"spoofed leading hops are skipped", "10.1.2.3:5000", "6.6.6.6, 198.51.100.9, 192.168.1.5", trusted, "198.51.100.9"},
		{"trusted peer without header", "192.168.1.5:5000", "", trusted, "192.168.1.5"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if tc.fwd != "" {
			req.Header.Set("X-Forwarded-For", tc.fwd)
		}
		if got := ClientIP(req, tc.trusted); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestAccessLogIncludesActor(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}), WithRequestID, WithAccessLog(logger, func(*http.Request) string { return "worker:w1" }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	out := logs.String()
	if !strings.Contains(out, `"actor":"worker:w1"`) || !strings.Contains(out, `"status":201`) {
		t.Fatalf("unexpected access log %s", out)
	}
}

func TestCORS(t *testing.T) {
	h := WithCORS([]string{"http://localhost:5173"}, "X-Worker-Id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-Worker-Id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rec.Code)
	}
	if !strings.Contains(strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-worker-id") {
		t.Fatalf("identity header not allowed: %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}

	other := httptest.NewRequest(http.MethodGet, "/api", nil)
	other.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be allowed")
	}
}
