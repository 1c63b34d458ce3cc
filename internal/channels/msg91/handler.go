// Package msg91 ingests messages relayed by the MSG91 WhatsApp gateway.
package msg91

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sevagully/lead-platform/internal/channels"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/observability/metrics"
	"github.com/sevagully/lead-platform/pkg/logging"
)

const channelName = "msg91"

// Payload is the gateway's flat webhook body. The gateway has shipped the
// message text under different keys over time, so all three are accepted.
type Payload struct {
	Sender       string `json:"sender"`
	Text         string `json:"text"`
	Message      string `json:"message"`
	Content      string `json:"content"`
	CustomerName string `json:"customer_name"`
	MessageUUID  string `json:"message_uuid"`
	ReceivedAt   string `json:"received_at"`
}

func (p Payload) body() string {
	if p.Text != "" {
		return p.Text
	}
	if p.Message != "" {
		return p.Message
	}
	return p.Content
}

// Ingester is the pipeline entry point the handler drives.
type Ingester interface {
	Ingest(ctx context.Context, msg ingest.InboundMessage) (ingest.Result, error)
}

// Handler terminates the MSG91 gateway webhook.
type Handler struct {
	authKey  string
	ingester Ingester
	metrics  *metrics.IngestMetrics
	logger   *logging.Logger
}

// NewHandler creates the gateway handler. An empty authKey disables the
// check (local development only).
func NewHandler(authKey string, ingester Ingester, m *metrics.IngestMetrics, logger *logging.Logger) *Handler {
	if ingester == nil {
		panic("msg91: ingester cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		authKey:  authKey,
		ingester: ingester,
		metrics:  m,
		logger:   logger,
	}
}

// HandleInbound handles POST deliveries from the gateway. The shared secret
// arrives in the custom `authkey` header and must match exactly,
// case-sensitively.
func (h *Handler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	if h.authKey != "" && r.Header.Get("authkey") != h.authKey {
		h.metrics.ObserveInbound(channelName, "unauthorized")
		channels.WriteError(w, http.StatusUnauthorized, "invalid_authkey")
		return
	}

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		channels.WriteError(w, http.StatusBadRequest, "malformed_payload")
		return
	}

	result, err := h.ingester.Ingest(r.Context(), toInbound(payload))
	h.metrics.ObserveInbound(channelName, result.Status)
	channels.WriteResult(w, result, err)
}

func toInbound(p Payload) ingest.InboundMessage {
	ts := time.Now().UTC()
	if p.ReceivedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, p.ReceivedAt); err == nil {
			ts = parsed.UTC()
		}
	}
	return ingest.InboundMessage{
		Channel:     channelName,
		MessageID:   p.MessageUUID,
		SenderPhone: p.Sender,
		SenderName:  p.CustomerName,
		Text:        p.body(),
		Timestamp:   ts,
		Source:      leads.SourceMSG91,
	}
}
