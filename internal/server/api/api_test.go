package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConfigHandler_Get(t *testing.T) {
	handler := NewConfigHandler(config.NewHolder(nil), Persistence{}, zaptest.NewLogger(t).Sugar())

	rec := do(t, handler, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response configResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Config.CooldownSeconds != 1.5 {
		t.Errorf("expected default cooldown, got %v", response.Config.CooldownSeconds)
	}
	if response.Ranges["scroll_speed"] != config.ScrollSpeedRange {
		t.Errorf("unexpected scroll_speed range %+v", response.Ranges["scroll_speed"])
	}
}

func TestConfigHandler_Update(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "config.json")
	holder := config.NewHolder(nil)
	before := holder.Load()
	handler := NewConfigHandler(holder, Persistence{Store: s, Path: path}, zaptest.NewLogger(t).Sugar())

	rec := do(t, handler, http.MethodPut, "/api/config", `{"cooldown_seconds": 9, "scroll_speed": 0.8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response configResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Issues) != 1 || response.Issues[0].Field != "cooldown_seconds" {
		t.Errorf("expected a cooldown clamp issue, got %+v", response.Issues)
	}

	cur := holder.Load()
	if cur == before {
		t.Fatal("expected a new snapshot to be installed")
	}
	if cur.CooldownSeconds != 3.0 || cur.ScrollSpeed != 0.8 {
		t.Errorf("unexpected snapshot %+v", cur)
	}
	if cur.PinchThreshold != before.PinchThreshold {
		t.Error("fields missing from the body should keep their values")
	}
	if before.CooldownSeconds != 1.5 {
		t.Error("previous snapshot was mutated")
	}

	stored, _, err := s.Settings().LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if stored.ScrollSpeed != 0.8 {
		t.Errorf("stored scroll speed = %v", stored.ScrollSpeed)
	}

	fromFile, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if fromFile.CooldownSeconds != 3.0 {
		t.Errorf("file cooldown = %v", fromFile.CooldownSeconds)
	}
}

func TestConfigHandler_Errors(t *testing.T) {
	handler := NewConfigHandler(config.NewHolder(nil), Persistence{}, zaptest.NewLogger(t).Sugar())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"invalid json", http.MethodPut, "/api/config", "{", http.StatusBadRequest},
		{"wrong field type", http.MethodPut, "/api/config", `{"cooldown_seconds":"slow"}`, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/api/config", "", http.StatusMethodNotAllowed},
		{"reset with get", http.MethodGet, "/api/config/reset", "", http.StatusMethodNotAllowed},
		{"unknown subpath", http.MethodGet, "/api/config/other", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestConfigHandler_Reset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CooldownSeconds = 2.5
	cfg.Bindings[gesture.Pinch] = action.Noop
	holder := config.NewHolder(cfg)
	handler := NewConfigHandler(holder, Persistence{}, zaptest.NewLogger(t).Sugar())

	rec := do(t, handler, http.MethodPost, "/api/config/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	cur := holder.Load()
	if cur.CooldownSeconds != 1.5 || cur.Bindings.Lookup(gesture.Pinch) != action.PlayPause {
		t.Errorf("expected defaults after reset, got %+v", cur)
	}
}

func TestConfigHandler_ResetClearsStoredConfig(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "config.json")
	handler := NewConfigHandler(config.NewHolder(nil), Persistence{Store: s, Path: path}, zaptest.NewLogger(t).Sugar())

	if rec := do(t, handler, http.MethodPut, "/api/config", `{"cooldown_seconds": 2.5}`); rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if _, _, err := s.Settings().LoadConfig(); err != nil {
		t.Fatalf("expected a stored config after update, got %v", err)
	}

	if rec := do(t, handler, http.MethodPost, "/api/config/reset", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if _, _, err := s.Settings().LoadConfig(); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected stored config removed, got %v", err)
	}
	fromFile, _, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile.CooldownSeconds != 1.5 {
		t.Errorf("file cooldown = %v, want default", fromFile.CooldownSeconds)
	}

	// A second reset with nothing stored still succeeds.
	if rec := do(t, handler, http.MethodPost, "/api/config/reset", ""); rec.Code != http.StatusOK {
		t.Errorf("second reset status = %d", rec.Code)
	}
}

func TestBindingsHandler_List(t *testing.T) {
	handler := NewBindingsHandler(config.NewHolder(nil), Persistence{}, zaptest.NewLogger(t).Sugar())

	rec := do(t, handler, http.MethodGet, "/api/bindings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listBindingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Bindings) != len(gesture.IDs) {
		t.Fatalf("expected %d bindings, got %d", len(gesture.IDs), len(response.Bindings))
	}
	if b := response.Bindings[0]; b.Slot != gesture.Pinch || b.Action != action.PlayPause || b.DisplayName != "Play/Pause" {
		t.Errorf("unexpected first binding %+v", b)
	}
	if len(response.Actions) != len(action.Names) {
		t.Errorf("expected %d actions, got %d", len(action.Names), len(response.Actions))
	}
}

func TestBindingsHandler_Update(t *testing.T) {
	s := newTestStore(t)
	holder := config.NewHolder(nil)
	handler := NewBindingsHandler(holder, Persistence{Store: s}, zaptest.NewLogger(t).Sugar())

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"scroll on narrow angle", "/api/bindings/narrow_angle", `{"action":"scroll"}`, http.StatusOK},
		{"noop on pinch", "/api/bindings/pinch", `{"action":"noop"}`, http.StatusOK},
		{"continuous on one-shot slot", "/api/bindings/wide_left", `{"action":"volume"}`, http.StatusBadRequest},
		{"unknown action", "/api/bindings/pinch", `{"action":"launch"}`, http.StatusBadRequest},
		{"unknown slot", "/api/bindings/fist", `{"action":"next"}`, http.StatusNotFound},
		{"invalid json", "/api/bindings/pinch", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPut, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	cur := holder.Load()
	if cur.Bindings.Lookup(gesture.NarrowAngle) != action.Scroll {
		t.Errorf("narrow_angle = %s, want scroll", cur.Bindings.Lookup(gesture.NarrowAngle))
	}
	if cur.Bindings.Lookup(gesture.Pinch) != action.Noop {
		t.Errorf("pinch = %s, want noop", cur.Bindings.Lookup(gesture.Pinch))
	}
	if cur.Bindings.Lookup(gesture.WideLeft) != action.Previous {
		t.Error("rejected update changed the binding")
	}

	stored, _, err := s.Settings().LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if stored.Bindings.Lookup(gesture.NarrowAngle) != action.Scroll {
		t.Error("binding was not persisted")
	}
}

func TestBindingsHandler_ConcurrentUpdates(t *testing.T) {
	s := newTestStore(t)
	holder := config.NewHolder(nil)
	handler := NewBindingsHandler(holder, Persistence{Store: s}, zaptest.NewLogger(t).Sugar())

	want := map[gesture.ID]action.Name{
		gesture.Pinch:       action.Next,
		gesture.WideLeft:    action.PlayPause,
		gesture.WideRight:   action.Noop,
		gesture.NarrowAngle: action.Scroll,
	}

	var wg sync.WaitGroup
	codes := make(chan int, len(want)*20)
	for i := 0; i < 20; i++ {
		for id, name := range want {
			wg.Add(1)
			go func(id gesture.ID, name action.Name) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPut, "/api/bindings/"+string(id),
					bytes.NewBufferString(`{"action":"`+string(name)+`"}`))
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				codes <- rec.Code
			}(id, name)
		}
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("update status = %d", code)
		}
	}

	stored, _, err := s.Settings().LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	for id, name := range want {
		if got := holder.Load().Bindings.Lookup(id); got != name {
			t.Errorf("%s = %s, want %s", id, got, name)
		}
		if got := stored.Bindings.Lookup(id); got != name {
			t.Errorf("stored %s = %s, want %s", id, got, name)
		}
	}
}

func TestHistoryHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewHistoryHandler(s)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, k := range []action.Kind{action.KindPlayPause, action.KindNext, action.KindVolumeUp} {
		e := &store.Entry{Kind: k, Gesture: gesture.Pinch, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.History().Record(e); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(t, handler, http.MethodGet, "/api/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var response historyResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response.Total != 3 || len(response.Entries) != 2 {
		t.Fatalf("expected 2 of 3 entries, got %d of %d", len(response.Entries), response.Total)
	}
	if response.Entries[0].Kind != action.KindVolumeUp {
		t.Errorf("expected newest first, got %s", response.Entries[0].Kind)
	}

	if rec := do(t, handler, http.MethodGet, "/api/history?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}

	rec = do(t, handler, http.MethodDelete, "/api/history?keep=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var pruned pruneResponse
	json.NewDecoder(rec.Body).Decode(&pruned)
	if pruned.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", pruned.Deleted)
	}

	if rec := do(t, handler, http.MethodPost, "/api/history", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
