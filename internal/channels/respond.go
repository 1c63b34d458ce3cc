// Package channels holds the shared response contract for the inbound
// webhook handlers.
package channels

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/ingest"
)

// WriteResult writes the common webhook response. Success, skipped, and
// duplicate all answer 200 so senders stop retrying; only genuinely
// retryable failures surface as 5xx.
func WriteResult(w http.ResponseWriter, result ingest.Result, err error) {
	code := http.StatusOK
	if err != nil {
		code = http.StatusInternalServerError
		if errors.Is(err, extract.ErrUnavailable) {
			code = http.StatusServiceUnavailable
		}
		if result.Status == "" {
			result = ingest.Result{Status: ingest.StatusError, Reason: result.Reason}
		}
	}
	writeJSON(w, code, result)
}

// WriteError writes a structured error response so webhook senders always
// get a JSON body to base retry decisions on.
func WriteError(w http.ResponseWriter, code int, reason string) {
	writeJSON(w, code, ingest.Result{Status: ingest.StatusError, Reason: reason})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
