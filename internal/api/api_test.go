// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/repository"
	"github.com/tomtom215/chaimap/internal/store"
	"github.com/tomtom215/chaimap/internal/viewport"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

const (
	testUser   = "user-1"
	testOrigin = "http://localhost:5173"

	masalaSpot   = `{"name":"Masala House","address":"1 Market St","latitude":37.78,"longitude":-122.41,"chaiTypes":["Masala"],"rating":5}`
	kashmiriSpot = `{"name":"Kashmiri Corner","address":"2 Mission St","latitude":37.76,"longitude":-122.42,"chaiTypes":["Kashmiri"],"rating":2}`
)

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

type testEnv struct {
	t       *testing.T
	handler http.Handler
	m       *mapview.Map
	hub     *ws.Hub
	db      store.Store
}

type envOption func(*ChiMiddlewareConfig)

func newTestEnv(t *testing.T, userID string, opts ...envOption) *testEnv {
	t.Helper()

	db, err := store.OpenBadger("", true)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	docs := store.NewBadgerStore(db)
	repo := repository.New(docs, repository.DefaultConfig())
	rec := viewport.NewReconciler(viewport.DefaultConfig())

	cfg := mapview.DefaultConfig(userID)
	cfg.ReloadOnWrite = false
	cfg.SearchDebounce = 0
	m := mapview.New(cfg, repo, rec)
	hub := ws.NewHub(ws.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = m.Serve(ctx) }()
	go func() { _ = hub.Serve(ctx) }()
	t.Cleanup(cancel)

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = []string{testOrigin}
	mwCfg.RateLimitDisabled = true
	for _, opt := range opts {
		opt(mwCfg)
	}

	router := NewRouter(NewHandler(m, hub), NewChiMiddleware(mwCfg))
	return &testEnv{t: t, handler: router.SetupChi(), m: m, hub: hub, db: docs}
}

func (e *testEnv) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			e.t.Fatalf("%s %s: decode envelope: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func (e *testEnv) mustDo(method, path, body string, want int) envelope {
	e.t.Helper()
	rec, env := e.do(method, path, body)
	if rec.Code != want {
		e.t.Fatalf("%s %s = %d, want %d\n%s", method, path, rec.Code, want, rec.Body.String())
	}
	return env
}

// seedProfile stores the session user's profile so reloads are not degraded.
func (e *testEnv) seedProfile() {
	e.t.Helper()
	err := e.db.Create(context.Background(), repository.DefaultConfig().UsersCollection, testUser, map[string]any{
		"topTasteTags": []string{"Masala"},
		"friends":      []string{},
	})
	if err != nil {
		e.t.Fatalf("seed profile: %v", err)
	}
}

// createSpot posts a spot and returns its id.
func (e *testEnv) createSpot(body string) string {
	e.t.Helper()
	env := e.mustDo(http.MethodPost, "/api/v1/spots", body, http.StatusCreated)
	var result models.WriteResult
	decodeData(e.t, env, &result)
	if !result.Success || result.ID == "" {
		e.t.Fatalf("create spot result = %+v", result)
	}
	return result.ID
}

func (e *testEnv) reload() {
	e.t.Helper()
	e.mustDo(http.MethodPost, "/api/v1/reload", "", http.StatusOK)
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
