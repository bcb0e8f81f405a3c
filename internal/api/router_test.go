// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/chaimap/internal/metrics"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

func TestRouter_CORS(t *testing.T) {
	env := newTestEnv(t, testUser)

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"allowed origin", testOrigin, testOrigin},
		{"unknown origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/spots", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, testUser)

	res := env.mustDo(http.MethodGet, "/api/v1/nope", "", http.StatusNotFound)
	if res.Error == nil || res.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", res.Error)
	}

	res = env.mustDo(http.MethodDelete, "/api/v1/spots", "", http.StatusMethodNotAllowed)
	if res.Error == nil || res.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("error = %+v, want METHOD_NOT_ALLOWED", res.Error)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(t, testUser, func(c *ChiMiddlewareConfig) {
		c.RateLimitDisabled = false
		c.RateLimitRequests = 2
		c.RateLimitWindow = time.Minute
	})

	env.mustDo(http.MethodGet, "/api/v1/viewport", "", http.StatusOK)
	env.mustDo(http.MethodGet, "/api/v1/viewport", "", http.StatusOK)
	res := env.mustDo(http.MethodGet, "/api/v1/viewport", "", http.StatusTooManyRequests)
	if res.Error == nil || res.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v, want RATE_LIMITED", res.Error)
	}

	// Health checks are not rate limited.
	env.mustDo(http.MethodGet, "/api/v1/health", "", http.StatusOK)
}

func TestRouter_RequestIDAndMetrics(t *testing.T) {
	env := newTestEnv(t, testUser)
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/spots/{id}/score", "404")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spots/abc/score", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("requests counted under the route pattern = %v, want 1", got)
	}

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "chaimap_api_requests_total") {
		t.Error("/metrics does not expose chaimap_api_requests_total")
	}
}

func TestWebSocket_SendsSnapshotOnConnect(t *testing.T) {
	env := newTestEnv(t, testUser)
	srv := httptest.NewServer(env.handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	header := http.Header{"Origin": []string{testOrigin}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var msg struct {
		Type string            `json:"type"`
		Data ws.SnapshotUpdate `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != ws.MessageTypeSnapshotUpdated {
		t.Errorf("type = %q, want %q", msg.Type, ws.MessageTypeSnapshotUpdated)
	}
	if msg.Data.Version != env.m.Snapshot().Version {
		t.Errorf("version = %d, want %d", msg.Data.Version, env.m.Snapshot().Version)
	}

	waitFor(t, func() bool { return env.hub.GetClientCount() == 1 })
}

func TestWebSocket_RejectsOrigins(t *testing.T) {
	env := newTestEnv(t, testUser)
	srv := httptest.NewServer(env.handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	tests := []struct {
		name   string
		header http.Header
	}{
		{"missing origin", http.Header{}},
		{"unknown origin", http.Header{"Origin": []string{"http://evil.example"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(url, tt.header)
			if err == nil {
				_ = conn.Close()
				t.Fatal("Dial succeeded, want rejection")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %v, want 403", resp)
			}
		})
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	env := newTestEnv(t, testUser)
	router := NewRouter(NewHandler(env.m, nil), nil)

	rec := httptest.NewRecorder()
	router.SetupChi().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
