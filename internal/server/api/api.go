// Package api provides HTTP API handlers for the gesture settings UI.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// persistMu orders writes to the persistence sinks across handlers.
var persistMu sync.Mutex

// Persistence saves accepted snapshots. Either sink may be unset.
type Persistence struct {
	Store *store.Store
	// Path is the JSON config file mirrored on every save.
	Path string
}

// Sync writes the holder's current snapshot to every configured sink.
// Loading under the lock means the last write always carries the newest
// snapshot, whatever order concurrent updates finish in.
func (p Persistence) Sync(holder *config.Holder) error {
	persistMu.Lock()
	defer persistMu.Unlock()
	return p.save(holder.Load())
}

// Reset drops the stored snapshot and rewrites the config file with the
// defaults, so the next launch starts from them.
func (p Persistence) Reset() error {
	persistMu.Lock()
	defer persistMu.Unlock()

	if p.Store != nil {
		err := p.Store.Settings().Delete(store.ConfigKey)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("clear stored config: %w", err)
		}
	}
	if p.Path != "" {
		if err := config.DefaultConfig().Save(p.Path); err != nil {
			return fmt.Errorf("save config file: %w", err)
		}
	}
	return nil
}

func (p Persistence) save(cfg *config.Config) error {
	if p.Store != nil {
		if err := p.Store.Settings().SaveConfig(cfg); err != nil {
			return fmt.Errorf("save config to store: %w", err)
		}
	}
	if p.Path != "" {
		if err := cfg.Save(p.Path); err != nil {
			return fmt.Errorf("save config file: %w", err)
		}
	}
	return nil
}
