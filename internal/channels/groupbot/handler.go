// Package groupbot ingests messages relayed by the unofficial WhatsApp
// group-listener bot.
package groupbot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sevagully/lead-platform/internal/channels"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/observability/metrics"
	"github.com/sevagully/lead-platform/pkg/logging"
)

const (
	channelName      = "groupbot"
	defaultCacheSize = 512
)

// Payload is the bot's webhook body.
type Payload struct {
	Source        string `json:"source"`
	MessageID     string `json:"message_id"`
	Timestamp     int64  `json:"timestamp"`
	Message       string `json:"message"`
	SenderPhone   string `json:"sender_phone"`
	SenderName    string `json:"sender_name"`
	GroupID       string `json:"group_id"`
	GroupName     string `json:"group_name"`
	IsForwarded   bool   `json:"is_forwarded"`
	QuotedMessage string `json:"quoted_message"`
}

// Ingester is the pipeline entry point the handler drives.
type Ingester interface {
	Ingest(ctx context.Context, msg ingest.InboundMessage) (ingest.Result, error)
}

// Handler terminates the group-bot webhook. A fixed-capacity LRU of recently
// seen message ids short-circuits the bot's aggressive redeliveries; the
// database uniqueness constraint remains the authoritative dedup.
type Handler struct {
	token    string
	ingester Ingester
	seen     *lru.Cache[string, ingest.Result]
	metrics  *metrics.IngestMetrics
	logger   *logging.Logger
}

// NewHandler creates the bot handler. cacheSize <= 0 selects the default.
func NewHandler(token string, ingester Ingester, cacheSize int, m *metrics.IngestMetrics, logger *logging.Logger) *Handler {
	if ingester == nil {
		panic("groupbot: ingester cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	seen, err := lru.New[string, ingest.Result](cacheSize)
	if err != nil {
		panic("groupbot: lru cache: " + err.Error())
	}
	return &Handler{
		token:    token,
		ingester: ingester,
		seen:     seen,
		metrics:  m,
		logger:   logger,
	}
}

// HandleInbound handles POST deliveries from the bot.
func (h *Handler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.metrics.ObserveInbound(channelName, "unauthorized")
		channels.WriteError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		channels.WriteError(w, http.StatusBadRequest, "malformed_payload")
		return
	}

	msg := toInbound(payload)
	key := msg.DedupKey()
	if prior, dup := h.seen.Get(key); dup {
		// Redeliveries of a created lead answer duplicate with the same lead
		// reference; earlier skips replay unchanged.
		if prior.Status == ingest.StatusSuccess {
			prior.Status = ingest.StatusDuplicate
		}
		h.metrics.ObserveInbound(channelName, prior.Status)
		channels.WriteResult(w, prior, nil)
		return
	}

	result, err := h.ingester.Ingest(r.Context(), msg)
	if err == nil {
		// Only cache outcomes that must not be retried.
		h.seen.Add(key, result)
	}

	h.metrics.ObserveInbound(channelName, result.Status)
	channels.WriteResult(w, result, err)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return false
	}
	provided := auth[len(prefix):]
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) == 1
}

func toInbound(p Payload) ingest.InboundMessage {
	ts := time.Now().UTC()
	if p.Timestamp > 0 {
		ts = time.Unix(p.Timestamp, 0).UTC()
	}
	source := leads.SourceWhatsAppBot
	switch {
	case p.GroupID != "":
		source = leads.SourceWhatsAppGroup
	case p.IsForwarded:
		source = leads.SourceWhatsAppForwarded
	}
	text := p.Message
	if text == "" && p.QuotedMessage != "" {
		text = p.QuotedMessage
	}
	return ingest.InboundMessage{
		Channel:     channelName,
		MessageID:   p.MessageID,
		SenderPhone: p.SenderPhone,
		SenderName:  p.SenderName,
		Text:        text,
		Timestamp:   ts,
		GroupID:     p.GroupID,
		GroupName:   p.GroupName,
		Forwarded:   p.IsForwarded,
		Source:      source,
	}
}
