// Package config holds the gesture engine settings snapshot.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config is an immutable-by-convention settings snapshot. Callers that need
// to change settings build a new Config and swap it through a Holder.
type Config struct {
	gesture.Params

	// ScrollSpeed in [0.1,1.0]; the minimum interval between scroll
	// commands is (1.1 - ScrollSpeed) seconds.
	ScrollSpeed     float64          `json:"scroll_speed"`
	CooldownSeconds float64          `json:"cooldown_seconds"`
	Bindings        gesture.Bindings `json:"bindings"`
}

// Parameter ranges accepted by Validate.
var (
	VolMinDistRange      = Range{0.01, 0.1}
	VolMaxDistRange      = Range{0.05, 0.3}
	PinchThresholdRange  = Range{0.01, 0.1}
	WideAngleRange       = Range{20, 90}
	NarrowAngleRange     = Range{10, 60}
	ScrollSpeedRange     = Range{0.1, 1.0}
	CooldownSecondsRange = Range{0.5, 3.0}
)

// Range is an inclusive interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// DefaultBindings returns the stock gesture-to-action table.
func DefaultBindings() gesture.Bindings {
	return gesture.Bindings{
		gesture.Pinch:       action.PlayPause,
		gesture.WideLeft:    action.Previous,
		gesture.WideRight:   action.Next,
		gesture.NarrowAngle: action.Volume,
	}
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Params: gesture.Params{
			PinchThreshold:       0.025,
			WideAngleThreshold:   50,
			NarrowAngleThreshold: 30,
			VolMinDist:           0.05,
			VolMaxDist:           0.15,
			InvertDirection:      false,
		},
		ScrollSpeed:     0.5,
		CooldownSeconds: 1.5,
		Bindings:        DefaultBindings(),
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Bindings = c.Bindings.Clone()
	return &out
}

// Cooldown returns the cooldown window as a duration.
func (c *Config) Cooldown() time.Duration {
	return seconds(c.CooldownSeconds)
}

// ScrollInterval returns the minimum time between two scroll commands.
func (c *Config) ScrollInterval() time.Duration {
	return seconds(1.1 - c.ScrollSpeed)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Issue describes a setting that Validate had to correct.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// Validate clamps values to their allowed ranges and repairs the binding
// table. Missing slots take their default binding; unknown actions and
// continuous actions on one-shot slots are rebound to noop. It returns the
// corrections it made.
func (c *Config) Validate() []Issue {
	var issues []Issue
	clampField := func(name string, v *float64, r Range) {
		if cv := r.Clamp(*v); cv != *v {
			issues = append(issues, Issue{Field: name, Message: fmt.Sprintf("%g clamped to %g", *v, cv)})
			*v = cv
		}
	}

	clampField("vol_min_dist", &c.VolMinDist, VolMinDistRange)
	clampField("vol_max_dist", &c.VolMaxDist, VolMaxDistRange)
	clampField("pinch_threshold", &c.PinchThreshold, PinchThresholdRange)
	clampField("wide_angle_threshold", &c.WideAngleThreshold, WideAngleRange)
	clampField("narrow_angle_threshold", &c.NarrowAngleThreshold, NarrowAngleRange)
	clampField("scroll_speed", &c.ScrollSpeed, ScrollSpeedRange)
	clampField("cooldown_seconds", &c.CooldownSeconds, CooldownSecondsRange)

	if c.VolMaxDist <= c.VolMinDist {
		c.VolMaxDist = c.VolMinDist + 0.1
		issues = append(issues, Issue{Field: "vol_max_dist", Message: "raised above vol_min_dist"})
	}

	if c.Bindings == nil {
		c.Bindings = make(gesture.Bindings)
	}
	defaults := DefaultBindings()
	for _, id := range gesture.IDs {
		n, ok := c.Bindings[id]
		switch {
		case !ok:
			c.Bindings[id] = defaults[id]
		case !n.Valid():
			c.Bindings[id] = action.Noop
			issues = append(issues, Issue{Field: "bindings." + string(id), Message: fmt.Sprintf("unknown action %q bound to noop", n)})
		case n.Continuous() && id != gesture.NarrowAngle:
			c.Bindings[id] = action.Noop
			issues = append(issues, Issue{Field: "bindings." + string(id), Message: fmt.Sprintf("continuous action %q needs the narrow-angle slot, bound to noop", n)})
		}
	}
	for id := range c.Bindings {
		if _, err := gesture.ParseID(string(id)); err != nil {
			delete(c.Bindings, id)
			issues = append(issues, Issue{Field: "bindings." + string(id), Message: "unknown gesture removed"})
		}
	}

	return issues
}

// Decode reads a JSON config from r on top of the defaults, so that keys
// missing from the input keep their default values.
func Decode(r io.Reader) (*Config, []Issue, error) {
	cfg := DefaultConfig()
	cfg.Bindings = nil
	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return DefaultConfig(), nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate(), nil
}

// Load reads configuration from the given JSON file path. If the file does
// not exist it returns DefaultConfig(). On JSON error it returns defaults
// with the error.
func Load(path string) (*Config, []Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil, nil
		}
		return DefaultConfig(), nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Save writes the configuration to the given path in indented JSON. The
// file is replaced atomically: readers see the old or the new contents,
// never a partial write.
func (c *Config) Save(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
