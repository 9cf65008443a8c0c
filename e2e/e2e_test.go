package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	settings, err := s.Settings().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	application := app.New(app.Config{
		Store:     s,
		PluginDir: filepath.Join(tmpDir, "plugins"),
		Settings:  settings,
	})

	mockBackend := detector.NewMockBackend()
	application.SetBackend(mockBackend)

	srv := server.New(server.Config{
		Store:         s,
		Engine:        application.Engine(),
		ApplySettings: application.ApplySettings,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("UpdateSettings", func(t *testing.T) {
		req, err := http.NewRequest(
			http.MethodPut,
			ts.URL+"/api/settings",
			strings.NewReader(`{"hold_ms": 200}`),
		)
		if err != nil {
			t.Fatalf("request error = %v", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("update settings error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		// The running app picked the change up
		if got := application.Settings().HoldMs; got != 200 {
			t.Errorf("app HoldMs = %d, want 200", got)
		}
	})

	t.Run("ConfirmGesture", func(t *testing.T) {
		var confirmed []gesture.Gesture
		application.OnGestureConfirmed(func(g gesture.Gesture, conf float64) {
			confirmed = append(confirmed, g)
		})

		// Hold a peace sign past the (shortened) hold duration
		hands := []detector.HandObservation{detector.PeaceSignObservation()}
		now := time.Now()
		for elapsed := time.Duration(0); elapsed <= 250*time.Millisecond; elapsed += 30 * time.Millisecond {
			application.ProcessHands(hands, now)
			now = now.Add(30 * time.Millisecond)
		}

		if len(confirmed) != 1 || confirmed[0] != gesture.PeaceSign {
			t.Fatalf("confirmed %v, want exactly one PeaceSign", confirmed)
		}
	})

	t.Run("StateReflectsConfirmation", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("get state error = %v", err)
		}
		defer resp.Body.Close()

		var state map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if state["last_confirmed"] != "peace-sign" {
			t.Errorf("last_confirmed = %v, want peace-sign", state["last_confirmed"])
		}
	})

	t.Run("EventWasLogged", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events")
		if err != nil {
			t.Fatalf("get events error = %v", err)
		}
		defer resp.Body.Close()

		var events []*store.Event
		if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}
		if events[0].Kind != store.EventKindGesture || events[0].Name != "peace-sign" {
			t.Errorf("event = %+v, want a peace-sign gesture event", events[0])
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
		resp.Body.Close()
	})
}
