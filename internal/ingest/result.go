package ingest

// Result statuses shared by every channel's response contract.
const (
	StatusSuccess   = "success"
	StatusSkipped   = "skipped"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// Skip reasons surfaced to callers.
const (
	ReasonEmptyMessage   = "empty_message"
	ReasonInvalidPhone   = "invalid_phone"
	ReasonNoAddress      = "no_address"
	ReasonExtractorDown  = "extraction_unavailable"
	ReasonPersistFailure = "persist_failed"
)

// Result is the outcome of ingesting one message.
type Result struct {
	Status     string `json:"status"`
	LeadID     string `json:"leadId,omitempty"`
	LeadCode   string `json:"leadCode,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}
