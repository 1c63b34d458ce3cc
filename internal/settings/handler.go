package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sevagully/lead-platform/pkg/logging"
)

// Toggler is a Store whose switches can be flipped at runtime.
type Toggler interface {
	Store
	SetAutoApprove(ctx context.Context, value bool) error
}

// Handler exposes the admin settings endpoints.
type Handler struct {
	store  Toggler
	logger *logging.Logger
}

// NewHandler creates the settings handler.
func NewHandler(store Toggler, logger *logging.Logger) *Handler {
	if store == nil {
		panic("settings: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type autoApproveBody struct {
	Enabled bool `json:"enabled"`
}

// GetAutoApprove handles GET /admin/settings/auto-approve.
func (h *Handler) GetAutoApprove(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, autoApproveBody{Enabled: h.store.AutoApprove(r.Context())})
}

// SetAutoApprove handles PUT /admin/settings/auto-approve.
func (h *Handler) SetAutoApprove(w http.ResponseWriter, r *http.Request) {
	var body autoApproveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.store.SetAutoApprove(r.Context(), body.Enabled); err != nil {
		h.logger.Error("settings: failed to persist auto_approve", "error", err)
		http.Error(w, "failed to persist setting", http.StatusInternalServerError)
		return
	}
	h.logger.Info("auto_approve updated", "enabled", body.Enabled)
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
