// Package ingest orchestrates the path from an inbound channel message to a
// persisted, geocoded, deduplicated lead.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/sevagully/lead-platform/internal/leads"
)

// InboundMessage is the channel-agnostic envelope the adapters produce.
type InboundMessage struct {
	Channel     string
	MessageID   string
	SenderPhone string
	SenderName  string
	Text        string
	Timestamp   time.Time
	GroupID     string
	GroupName   string
	Forwarded   bool
	Source      leads.Source
}

// DedupKey returns the unique-per-channel message id, synthesizing one from
// channel, sender, and timestamp when the channel does not supply ids.
func (m InboundMessage) DedupKey() string {
	if strings.TrimSpace(m.MessageID) != "" {
		return m.MessageID
	}
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return fmt.Sprintf("%s_%s_%d", m.Channel, m.SenderPhone, ts.Unix())
}
