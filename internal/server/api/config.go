package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/config"
)

// ConfigHandler reads and replaces the active settings snapshot.
type ConfigHandler struct {
	holder  *config.Holder
	persist Persistence
	logger  *zap.SugaredLogger
}

// NewConfigHandler creates a ConfigHandler over holder.
func NewConfigHandler(holder *config.Holder, persist Persistence, logger *zap.SugaredLogger) *ConfigHandler {
	return &ConfigHandler{holder: holder, persist: persist, logger: logger}
}

type configResponse struct {
	Config *config.Config          `json:"config"`
	Issues []config.Issue          `json:"issues"`
	Ranges map[string]config.Range `json:"ranges"`
}

var ranges = map[string]config.Range{
	"vol_min_dist":           config.VolMinDistRange,
	"vol_max_dist":           config.VolMaxDistRange,
	"pinch_threshold":        config.PinchThresholdRange,
	"wide_angle_threshold":   config.WideAngleRange,
	"narrow_angle_threshold": config.NarrowAngleRange,
	"scroll_speed":           config.ScrollSpeedRange,
	"cooldown_seconds":       config.CooldownSecondsRange,
}

// ServeHTTP routes /api/config and /api/config/reset.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/config")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reset(w)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// get handles GET /api/config.
func (h *ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Config: h.holder.Load(),
		Issues: []config.Issue{},
		Ranges: ranges,
	})
}

// update handles PUT /api/config. Fields missing from the body keep their
// current values; out-of-range values are clamped and reported as issues.
func (h *ConfigHandler) update(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cfg, issues, err := h.holder.Update(func(cfg *config.Config) error {
		return json.Unmarshal(body, cfg)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid config")
		return
	}
	h.logger.Infow("config updated", "issues", len(issues))

	if err := h.persist.Sync(h.holder); err != nil {
		h.logger.Errorw("persisting config", "error", err)
		writeError(w, http.StatusInternalServerError, "Config applied but not saved")
		return
	}
	h.respond(w, cfg, issues)
}

// reset handles POST /api/config/reset.
func (h *ConfigHandler) reset(w http.ResponseWriter) {
	cfg := config.DefaultConfig()
	issues := h.holder.Swap(cfg)
	h.logger.Infow("config reset to defaults")

	if err := h.persist.Reset(); err != nil {
		h.logger.Errorw("persisting config", "error", err)
		writeError(w, http.StatusInternalServerError, "Config applied but not saved")
		return
	}
	h.respond(w, cfg, issues)
}

func (h *ConfigHandler) respond(w http.ResponseWriter, cfg *config.Config, issues []config.Issue) {
	if issues == nil {
		issues = []config.Issue{}
	}
	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Issues: issues, Ranges: ranges})
}
