package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/geocode"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/phone"
)

// Preview is the side-effect-free extraction result shown to admins before
// they commit a pasted or forwarded message.
type Preview struct {
	Fields            extract.Fields `json:"fields"`
	Confidence        int            `json:"confidence"`
	LeadGeneratorName string         `json:"lead_generator_name,omitempty"`
}

// PreviewExtract runs extraction and normalization without touching storage,
// geocoding, or notifications. The sender name is echoed back so the admin
// form can prefill the lead generator.
func (s *Service) PreviewExtract(ctx context.Context, rawText, senderPhone, senderName string) (Preview, error) {
	fields, err := s.extractor.Extract(ctx, rawText)
	if err != nil {
		return Preview{}, err
	}
	// Score the raw extraction before the sender-phone fallback fills in a
	// number the message never contained.
	confidence := extract.Score(fields)
	fields.CustomerPhone = phone.Normalize(fields.CustomerPhone, senderPhone)
	fields.LocationAddress = strings.TrimSpace(fields.LocationAddress)
	return Preview{
		Fields:            fields,
		Confidence:        confidence,
		LeadGeneratorName: senderName,
	}, nil
}

// CommitRequest carries admin-reviewed fields for direct lead creation.
type CommitRequest struct {
	CustomerName        string       `json:"customer_name"`
	CustomerPhone       string       `json:"customer_phone"`
	LocationAddress     string       `json:"location_address"`
	ServiceType         string       `json:"service_type"`
	SpecialInstructions string       `json:"special_instructions"`
	Lat                 float64      `json:"lat"`
	Lng                 float64      `json:"lng"`
	RawMessage          string       `json:"raw_message"`
	Source              leads.Source `json:"source"`
	AdminUserID         string       `json:"-"`
}

// Commit persists an admin-edited lead. The admin has already reviewed the
// fields, so geocoding and the moderation queue are both bypassed: the
// supplied pin (or the default centroid) is used as-is and the lead opens
// immediately.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (Result, error) {
	// Admin-entered numbers may carry the country code, so run the fallback
	// strip against the same input.
	normalized := phone.Normalize(req.CustomerPhone, req.CustomerPhone)
	if normalized == "" {
		return skipped(ReasonInvalidPhone), nil
	}

	address := strings.TrimSpace(req.LocationAddress)
	if len(address) < minAddressLen {
		return skipped(ReasonNoAddress), nil
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" || !extract.ServiceType(serviceType).Valid() {
		serviceType = string(extract.ServiceOther)
	}

	point := geocode.Point{Lat: req.Lat, Lng: req.Lng}
	if !point.Valid() {
		point = s.cfg.DefaultCentroid
	}

	source := req.Source
	if source == "" {
		source = leads.SourceManual
	}

	createdBy := req.AdminUserID
	if createdBy == "" {
		createdBy = s.cfg.SystemUserID
	}

	fields := extract.Fields{
		CustomerName:        req.CustomerName,
		CustomerPhone:       normalized,
		LocationAddress:     address,
		ServiceType:         extract.ServiceType(serviceType),
		SpecialInstructions: req.SpecialInstructions,
	}
	confidence := extract.Score(fields)

	lead := &leads.Lead{
		ServiceType:         serviceType,
		CustomerName:        req.CustomerName,
		CustomerPhone:       normalized,
		LocationAddress:     address,
		LocationLat:         point.Lat,
		LocationLng:         point.Lng,
		SpecialInstructions: req.SpecialInstructions,
		Status:              leads.StatusOpen,
		Source:              source,
		RawMessage:          req.RawMessage,
		ImportConfidence:    confidence,
		CreatedByUserID:     createdBy,
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return Result{Status: StatusError, Reason: ReasonPersistFailure}, fmt.Errorf("ingest: commit lead: %w", err)
	}

	s.metrics.ObserveLeadCreated(string(created.Source), string(created.Status))
	// The admin already reviewed these fields; don't re-alert moderators.
	s.publish(ctx, created, true)

	return Result{
		Status:     StatusSuccess,
		LeadID:     created.ID,
		LeadCode:   created.LeadCode,
		Confidence: confidence,
	}, nil
}
