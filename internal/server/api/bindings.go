package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// BindingsHandler lists and edits the gesture-to-action table.
type BindingsHandler struct {
	holder  *config.Holder
	persist Persistence
	logger  *zap.SugaredLogger
}

// NewBindingsHandler creates a BindingsHandler over holder.
func NewBindingsHandler(holder *config.Holder, persist Persistence, logger *zap.SugaredLogger) *BindingsHandler {
	return &BindingsHandler{holder: holder, persist: persist, logger: logger}
}

type bindingResponse struct {
	Slot        gesture.ID  `json:"slot"`
	Description string      `json:"description"`
	Action      action.Name `json:"action"`
	DisplayName string      `json:"display_name"`
}

type actionResponse struct {
	Name        action.Name `json:"name"`
	DisplayName string      `json:"display_name"`
	Continuous  bool        `json:"continuous"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
	Actions  []actionResponse  `json:"actions"`
}

type updateBindingRequest struct {
	Action string `json:"action"`
}

func toBinding(id gesture.ID, n action.Name) bindingResponse {
	return bindingResponse{
		Slot:        id,
		Description: id.Description(),
		Action:      n,
		DisplayName: n.DisplayName(),
	}
}

// ServeHTTP routes /api/bindings and /api/bindings/{slot}.
func (h *BindingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.update(w, r, path)
}

// list handles GET /api/bindings.
func (h *BindingsHandler) list(w http.ResponseWriter, r *http.Request) {
	cfg := h.holder.Load()

	response := listBindingsResponse{
		Bindings: make([]bindingResponse, 0, len(gesture.IDs)),
		Actions:  make([]actionResponse, 0, len(action.Names)),
	}
	for _, id := range gesture.IDs {
		response.Bindings = append(response.Bindings, toBinding(id, cfg.Bindings.Lookup(id)))
	}
	for _, n := range action.Names {
		response.Actions = append(response.Actions, actionResponse{
			Name:        n,
			DisplayName: n.DisplayName(),
			Continuous:  n.Continuous(),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// update handles PUT /api/bindings/{slot}.
func (h *BindingsHandler) update(w http.ResponseWriter, r *http.Request, slot string) {
	id, err := gesture.ParseID(slot)
	if err != nil {
		writeError(w, http.StatusNotFound, "Gesture slot not found")
		return
	}

	var req updateBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name, err := action.ParseName(req.Action)
	if err != nil {
		if errors.Is(err, action.ErrUnknownAction) {
			writeError(w, http.StatusBadRequest, "Unknown action")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if name.Continuous() && id != gesture.NarrowAngle {
		writeError(w, http.StatusBadRequest, "Continuous actions can only be bound to narrow_angle")
		return
	}

	h.holder.Update(func(cfg *config.Config) error {
		cfg.Bindings[id] = name
		return nil
	})
	h.logger.Infow("binding updated", "slot", id, "action", name)

	if err := h.persist.Sync(h.holder); err != nil {
		h.logger.Errorw("persisting config", "error", err)
		writeError(w, http.StatusInternalServerError, "Binding applied but not saved")
		return
	}

	writeJSON(w, http.StatusOK, toBinding(id, name))
}
