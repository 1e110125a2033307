package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/config"
)

// ConfigKey is the settings key holding the config snapshot.
const ConfigKey = "config"

// SettingsRepository stores key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadConfig decodes the stored snapshot on top of the defaults. It returns
// ErrNotFound when no snapshot has been saved yet.
func (r *SettingsRepository) LoadConfig() (*config.Config, []config.Issue, error) {
	value, err := r.Get(ConfigKey)
	if err != nil {
		return nil, nil, err
	}
	cfg, issues, err := config.Decode(bytes.NewReader([]byte(value)))
	if err != nil {
		return nil, nil, fmt.Errorf("stored config: %w", err)
	}
	return cfg, issues, nil
}

// SaveConfig stores cfg as the active snapshot.
func (r *SettingsRepository) SaveConfig(cfg *config.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return r.Set(ConfigKey, string(data))
}
