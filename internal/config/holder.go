package config

import "sync/atomic"

// Holder publishes the current Config snapshot. Readers load a pointer once
// per frame; writers replace it atomically between frames.
type Holder struct {
	cur atomic.Pointer[Config]
}

// NewHolder creates a Holder seeded with cfg, or the defaults if cfg is nil.
func NewHolder(cfg *Config) *Holder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	h := &Holder{}
	h.cur.Store(cfg)
	return h
}

// Load returns the current snapshot. The returned Config must not be mutated.
func (h *Holder) Load() *Config {
	return h.cur.Load()
}

// Swap validates cfg, installs it as the current snapshot and returns the
// corrections Validate made.
func (h *Holder) Swap(cfg *Config) []Issue {
	issues := cfg.Validate()
	h.cur.Store(cfg)
	return issues
}

// Update applies fn to a copy of the current snapshot, validates the copy
// and installs it only if no other writer replaced the snapshot meanwhile.
// On a conflict fn runs again on the newer snapshot. An error from fn
// leaves the current snapshot in place.
func (h *Holder) Update(fn func(cfg *Config) error) (*Config, []Issue, error) {
	for {
		old := h.cur.Load()
		cfg := old.Clone()
		if err := fn(cfg); err != nil {
			return nil, nil, err
		}
		issues := cfg.Validate()
		if h.cur.CompareAndSwap(old, cfg) {
			return cfg, issues, nil
		}
	}
}
