package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := New(Config{Store: st})
	return srv, st
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestSettingsEndpoint_GetDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var settings store.Settings
	if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if settings != store.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestSettingsEndpoint_PartialUpdate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	var applied *store.Settings
	srv := New(Config{
		Store: st,
		ApplySettings: func(s store.Settings) {
			applied = &s
		},
	})

	body := bytes.NewBufferString(`{"sensitivity": 0.85}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", body)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var settings store.Settings
	if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if settings.Sensitivity != 0.85 {
		t.Errorf("Sensitivity = %f, want 0.85", settings.Sensitivity)
	}
	// Fields absent from the request body keep their stored values
	if settings.HoldMs != store.DefaultSettings().HoldMs {
		t.Errorf("HoldMs = %d, want unchanged default", settings.HoldMs)
	}

	if applied == nil {
		t.Fatal("ApplySettings was not invoked")
	}
	if applied.Sensitivity != 0.85 {
		t.Errorf("applied Sensitivity = %f, want 0.85", applied.Sensitivity)
	}

	// The update is persisted
	loaded, err := st.Settings().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Sensitivity != 0.85 {
		t.Errorf("persisted Sensitivity = %f, want 0.85", loaded.Sensitivity)
	}
}

func TestSettingsEndpoint_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var events []*store.Event
	if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events on empty store, want 0", len(events))
	}

	if _, err := st.Events().Record(store.EventKindGesture, "thumbs-up", 0.9); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(events) != 1 || events[0].Name != "thumbs-up" {
		t.Errorf("events = %+v, want one thumbs-up event", events)
	}
}

func TestEventsEndpoint_InvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events?limit=zero", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStateEndpoint(t *testing.T) {
	engine := gesture.NewEngine(gesture.DefaultEngineConfig(), nil)
	engine.Process([]gesture.Result{
		{Gesture: gesture.PeaceSign, Confidence: 0.9, Valid: true},
	}, time.Now())

	srv := New(Config{Engine: engine})

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var state map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if state["current"] != "peace-sign" {
		t.Errorf("current = %v, want peace-sign", state["current"])
	}
	if state["last_confirmed"] != "none" {
		t.Errorf("last_confirmed = %v, want none", state["last_confirmed"])
	}
}

func TestEventsWebsocket_Broadcast(t *testing.T) {
	srv, _ := newTestServer(t)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	// Give the handler a moment to register the client after the handshake
	time.Sleep(50 * time.Millisecond)
	srv.Events().Publish("gesture", "closed-fist", 0.8)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if event["kind"] != "gesture" || event["name"] != "closed-fist" {
		t.Errorf("event = %v, want gesture/closed-fist", event)
	}
}
