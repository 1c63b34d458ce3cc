package meta

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sevagully/lead-platform/internal/channels"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/observability/metrics"
	"github.com/sevagully/lead-platform/pkg/logging"
)

// Ingester is the pipeline entry point the handler drives.
type Ingester interface {
	Ingest(ctx context.Context, msg ingest.InboundMessage) (ingest.Result, error)
}

// Handler terminates the Meta WhatsApp Cloud webhook.
type Handler struct {
	verifyToken string
	appSecret   string
	ingester    Ingester
	metrics     *metrics.IngestMetrics
	logger      *logging.Logger
}

// NewHandler creates the webhook handler. appSecret may be empty, disabling
// signature checks (local development only).
func NewHandler(verifyToken, appSecret string, ingester Ingester, m *metrics.IngestMetrics, logger *logging.Logger) *Handler {
	if ingester == nil {
		panic("meta: ingester cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		ingester:    ingester,
		metrics:     m,
		logger:      logger,
	}
}

// HandleVerification handles the GET webhook verification challenge from Meta.
func (h *Handler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound handles POST webhook deliveries.
func (h *Handler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		channels.WriteError(w, http.StatusBadRequest, "unreadable_body")
		return
	}

	if h.appSecret != "" && !VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.metrics.ObserveInbound(channelName, "unauthorized")
		channels.WriteError(w, http.StatusUnauthorized, "invalid_signature")
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		channels.WriteError(w, http.StatusBadRequest, "malformed_payload")
		return
	}

	messages := ParseEvent(event)
	if len(messages) == 0 {
		// Status updates and non-text deliveries are acknowledged silently.
		h.metrics.ObserveInbound(channelName, ingest.StatusSkipped)
		channels.WriteResult(w, ingest.Result{Status: ingest.StatusSkipped, Reason: ingest.ReasonEmptyMessage}, nil)
		return
	}

	// Meta delivers one message per event in practice; process the first and
	// answer for it, ingesting any extras for their side effects.
	result, ingestErr := h.ingester.Ingest(r.Context(), messages[0])
	for _, extra := range messages[1:] {
		if _, err := h.ingester.Ingest(r.Context(), extra); err != nil {
			h.logger.Error("meta: extra message ingest failed", "error", err, "message_id", extra.MessageID)
		}
	}

	h.metrics.ObserveInbound(channelName, result.Status)
	channels.WriteResult(w, result, ingestErr)
}

// VerifySignature verifies the X-Hub-Signature-256 header.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	const prefix = "sha256="
	if len(signature) <= len(prefix) {
		return false
	}
	sigHex := signature[len(prefix):]

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sigHex))
}
