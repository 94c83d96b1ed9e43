// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/config"
	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/groups"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/provider"
	"github.com/tomtom215/gatherly/internal/recommend"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
	ws "github.com/tomtom215/gatherly/internal/websocket"
)

var london = geo.Location{Lat: 51.5074, Lng: -0.1278}

// testEnv is a fully wired API backed by an in-memory store.
type testEnv struct {
	store    *store.Store
	groups   *groups.Service
	sessions *session.Store
	hub      *ws.Hub
	handler  *Handler
	router   http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Recommend: config.RecommendConfig{
			TopN:            10,
			Workers:         2,
			DefaultRadiusKm: 10,
			MaxRadiusKm:     50,
			Timeout:         5 * time.Second,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := testConfig()

	cached := provider.NewCached(st, 100, time.Minute)
	st.OnRatingsChanged(cached.Invalidate)
	breakerCfg := provider.DefaultBreakerConfig()
	breakerCfg.Name = "api_test"

	engine, err := recommend.NewEngine(cfg.Recommend.Engine(), zerolog.Nop())
	if err != nil {
		t.Fatalf("recommend.NewEngine() error = %v", err)
	}
	engine.SetDataProvider(provider.NewBreaker(cached, breakerCfg, zerolog.Nop()))

	hub := ws.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	svc := groups.NewService(st, engine, hub, zerolog.Nop())
	sessions := session.NewStore(session.DefaultConfig(), nil)
	handler := NewHandler(st, svc, sessions, hub, cfg)

	return &testEnv{
		store:    st,
		groups:   svc,
		sessions: sessions,
		hub:      hub,
		handler:  handler,
		router:   NewRouter(handler, NewChiMiddlewareFromConfig(cfg.Security)).SetupChi(),
	}
}

// envelope is the decoded APIResponse with the payload left raw.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// do sends a request through the router. body may be nil, a string (sent
// verbatim) or a value to encode.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

// expect fails unless the response has the wanted status, and for errors the
// wanted code.
func expect(t *testing.T, w *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, status, w.Body.String())
	}
	if code == "" {
		return
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (e *testEnv) putUser(t *testing.T, id string, factor float64) {
	t.Helper()
	if _, err := e.store.PutUser(context.Background(), &models.User{ID: id, DisplayName: id, AdjustmentFactor: factor}); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) putPlace(t *testing.T, id string, loc geo.Location) {
	t.Helper()
	if err := e.store.PutPlace(context.Background(), &models.Place{ID: id, Name: id, Location: loc}); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) rate(t *testing.T, userID, placeID string, score float64) *models.Rating {
	t.Helper()
	r, err := e.store.CreateRating(context.Background(), &models.Rating{UserID: userID, PlaceID: placeID, OverallScore: score})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func (e *testEnv) createGroup(t *testing.T, owner string) *models.Group {
	t.Helper()
	g, err := e.groups.Create(context.Background(), groups.CreateInput{Name: "Friday drinks", OwnerID: owner, Location: london, RadiusKm: 5})
	if err != nil {
		t.Fatal(err)
	}
	return g
}
