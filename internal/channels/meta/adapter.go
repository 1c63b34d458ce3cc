package meta

import (
	"strconv"
	"time"

	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
)

const channelName = "meta"

// ParseEvent flattens a webhook event into channel-agnostic inbound
// messages. Non-text messages and status-only deliveries produce nothing.
func ParseEvent(event WebhookEvent) []ingest.InboundMessage {
	var out []ingest.InboundMessage

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			names := map[string]string{}
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range change.Value.Messages {
				if m.Text == nil || m.Text.Body == "" {
					continue
				}

				source := leads.SourceWhatsApp
				forwarded := m.Context != nil && (m.Context.Forwarded || m.Context.FrequentlyForwarded)
				if forwarded {
					source = leads.SourceWhatsAppForwarded
				}

				out = append(out, ingest.InboundMessage{
					Channel:     channelName,
					MessageID:   m.ID,
					SenderPhone: m.From,
					SenderName:  names[m.From],
					Text:        m.Text.Body,
					Timestamp:   parseTimestamp(m.Timestamp),
					Forwarded:   forwarded,
					Source:      source,
				})
			}
		}
	}

	return out
}

func parseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
