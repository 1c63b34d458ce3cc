package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevagully/lead-platform/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListResponse is the response for listing leads
type ListResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// List handles GET /admin/leads requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:      Status(r.URL.Query().Get("status")),
		Source:      Source(r.URL.Query().Get("source")),
		ServiceType: r.URL.Query().Get("service_type"),
		Limit:       50,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	results, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Leads:  results,
		Count:  len(results),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// Get handles GET /admin/leads/{leadID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")
	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get lead", "error", err, "lead_id", id)
		http.Error(w, "failed to get lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type claimRequest struct {
	UserID string `json:"user_id"`
}

// Claim handles POST /admin/leads/{leadID}/claim
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	h.transition(w, r, StatusClaimed, StatusUpdate{ClaimedByUserID: req.UserID})
}

type completeRequest struct {
	ProofURL string `json:"proof_url"`
}

// Complete handles POST /admin/leads/{leadID}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.transition(w, r, StatusCompleted, StatusUpdate{ProofURL: req.ProofURL})
}

// Reject handles POST /admin/leads/{leadID}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, StatusRejected, StatusUpdate{})
}

// Approve handles POST /admin/leads/{leadID}/approve, moving a pending lead
// into the open pool.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, StatusOpen, StatusUpdate{})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, next Status, opts StatusUpdate) {
	id := chi.URLParam(r, "leadID")
	lead, err := h.repo.UpdateStatus(r.Context(), id, next, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			http.Error(w, "lead not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, "illegal status transition", http.StatusConflict)
		default:
			h.logger.Error("failed to update lead status", "error", err, "lead_id", id, "next", next)
			http.Error(w, "failed to update lead", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("lead status updated", "lead_id", id, "status", next)
	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
