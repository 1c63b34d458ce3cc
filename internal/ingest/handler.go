package ingest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sevagully/lead-platform/internal/extract"
	httpmiddleware "github.com/sevagully/lead-platform/internal/http/middleware"
	"github.com/sevagully/lead-platform/pkg/logging"
)

// Handler exposes the admin-facing extraction endpoints: a dry-run preview
// and a reviewed commit.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates the admin ingest handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("ingest: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type previewRequest struct {
	RawMessage  string `json:"raw_message"`
	SenderPhone string `json:"sender_phone"`
	SenderName  string `json:"sender_name"`
}

// Preview handles POST /admin/leads/preview. It runs extraction without
// creating anything, so admins can inspect what a pasted message yields.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RawMessage == "" {
		http.Error(w, "raw_message is required", http.StatusBadRequest)
		return
	}

	preview, err := h.svc.PreviewExtract(r.Context(), req.RawMessage, req.SenderPhone, req.SenderName)
	if err != nil {
		if errors.Is(err, extract.ErrUnavailable) {
			http.Error(w, "extraction unavailable", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("preview extraction failed", "error", err)
		http.Error(w, "extraction failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// Commit handles POST /admin/leads/commit, persisting admin-reviewed fields
// directly as an open lead.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.AdminUserID = httpmiddleware.AdminUserID(r.Context())

	result, err := h.svc.Commit(r.Context(), req)
	if err != nil {
		h.logger.Error("lead commit failed", "error", err)
		http.Error(w, "failed to create lead", http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if result.Status != StatusSuccess {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
