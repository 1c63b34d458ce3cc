package leads

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Transitions are monotonic along pending/open -> claimed -> completed;
// rejected and cancelled are reachable from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusRejected, StatusCancelled:
		return true
	case StatusOpen:
		return s == StatusPending
	case StatusClaimed:
		return s == StatusPending || s == StatusOpen
	case StatusCompleted:
		return s == StatusClaimed
	}
	return false
}

// Source identifies which channel produced a lead.
type Source string

const (
	SourceManual            Source = "manual"
	SourceWhatsApp          Source = "whatsapp"
	SourceWhatsAppGroup     Source = "whatsapp_group"
	SourceWhatsAppForwarded Source = "whatsapp_forwarded"
	SourceWhatsAppBot       Source = "whatsapp_bot"
	SourceMSG91             Source = "msg91"
)

// Lead is a structured service request derived from an inbound message or
// manual entry.
type Lead struct {
	ID       string `json:"id"`
	LeadCode string `json:"lead_code"`

	ServiceType string `json:"service_type"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone"`

	LocationAddress string  `json:"location_address,omitempty"`
	LocationLat     float64 `json:"location_lat"`
	LocationLng     float64 `json:"location_lng"`

	SpecialInstructions string `json:"special_instructions,omitempty"`

	Status Status `json:"status"`

	Source            Source `json:"source"`
	RawMessage        string `json:"raw_message,omitempty"`
	WhatsAppMessageID string `json:"whatsapp_message_id,omitempty"`
	ImportConfidence  int    `json:"import_confidence,omitempty"`

	CreatedByUserID    string `json:"created_by_user_id"`
	LeadGeneratorName  string `json:"lead_generator_name,omitempty"`
	LeadGeneratorPhone string `json:"lead_generator_phone,omitempty"`

	ClaimedByUserID string     `json:"claimed_by_user_id,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	ProofURL        string     `json:"proof_url,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields every persisted lead must carry.
func (l *Lead) Validate() error {
	if len(l.CustomerPhone) != 10 {
		return ErrInvalidPhone
	}
	if strings.TrimSpace(l.ServiceType) == "" {
		return ErrMissingServiceType
	}
	if l.Status == "" {
		return ErrInvalidStatus
	}
	if l.CreatedByUserID == "" {
		return ErrMissingCreator
	}
	return nil
}

// ListFilter narrows List queries.
type ListFilter struct {
	Status      Status
	Source      Source
	ServiceType string
	Limit       int
	Offset      int
}
