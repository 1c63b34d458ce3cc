// Package notify fans a freshly created lead out to nearby providers and
// alerts moderators when an import needs review.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sevagully/lead-platform/internal/queue"
)

// LeadCreatedEvent is the queue payload emitted after a lead persists.
// Reviewed marks leads a human already vetted (admin commit); they skip the
// low-confidence moderator alert but still fan out to providers.
type LeadCreatedEvent struct {
	LeadID      string    `json:"lead_id"`
	LeadCode    string    `json:"lead_code"`
	ServiceType string    `json:"service_type"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Address     string    `json:"address,omitempty"`
	Status      string    `json:"status"`
	Confidence  int       `json:"confidence"`
	Reviewed    bool      `json:"reviewed,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher enqueues lead-created events for the worker. Publishing is
// fire-and-forget from the ingestion path: failures are logged by the caller
// and never fail the request.
type Publisher struct {
	queue queue.Client
}

func NewPublisher(q queue.Client) *Publisher {
	if q == nil {
		panic("notify: queue client cannot be nil")
	}
	return &Publisher{queue: q}
}

// Publish serializes the event onto the queue.
func (p *Publisher) Publish(ctx context.Context, evt LeadCreatedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("notify: enqueue event: %w", err)
	}
	return nil
}
