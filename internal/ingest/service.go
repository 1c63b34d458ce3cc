package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/geocode"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/notify"
	"github.com/sevagully/lead-platform/internal/observability/metrics"
	"github.com/sevagully/lead-platform/internal/phone"
	"github.com/sevagully/lead-platform/internal/settings"
	"github.com/sevagully/lead-platform/pkg/logging"
)

const minAddressLen = 5

// EventPublisher enqueues lead-created events. Publishing is fire-and-forget
// from the ingestion path.
type EventPublisher interface {
	Publish(ctx context.Context, evt notify.LeadCreatedEvent) error
}

// ServiceConfig carries the orchestration knobs.
type ServiceConfig struct {
	// SystemUserID is the attribution user for channel-created leads.
	SystemUserID string
	// DefaultCentroid is persisted when geocoding misses, so every lead has
	// usable coordinates for radius queries.
	DefaultCentroid geocode.Point
}

// Service wires extraction, normalization, geocoding, persistence, and
// fan-out into the ingestion pipeline.
type Service struct {
	repo      leads.Repository
	extractor extract.Extractor
	geocoder  geocode.Client
	settings  settings.Store
	publisher EventPublisher
	metrics   *metrics.IngestMetrics
	cfg       ServiceConfig
	logger    *logging.Logger
}

// NewService creates the ingestion orchestrator. The publisher and metrics
// may be nil; those steps become no-ops.
func NewService(repo leads.Repository, extractor extract.Extractor, geocoder geocode.Client, st settings.Store, publisher EventPublisher, m *metrics.IngestMetrics, cfg ServiceConfig, logger *logging.Logger) *Service {
	if repo == nil {
		panic("ingest: leads repository cannot be nil")
	}
	if extractor == nil {
		panic("ingest: extractor cannot be nil")
	}
	if st == nil {
		st = settings.Static{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SystemUserID == "" {
		cfg.SystemUserID = "system"
	}
	return &Service{
		repo:      repo,
		extractor: extractor,
		geocoder:  geocoder,
		settings:  st,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ingest runs one message through the full pipeline. The returned error is
// non-nil only for retryable failures (extraction outage, persistence
// failure); every skip and duplicate resolves into the Result alone.
func (s *Service) Ingest(ctx context.Context, msg InboundMessage) (Result, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return skipped(ReasonEmptyMessage), nil
	}

	dedupKey := msg.DedupKey()
	if existing, err := s.repo.GetByMessageID(ctx, dedupKey); err == nil {
		s.logger.Info("duplicate message ignored", "message_id", dedupKey, "lead_id", existing.ID)
		return Result{
			Status:     StatusDuplicate,
			LeadID:     existing.ID,
			LeadCode:   existing.LeadCode,
			Confidence: existing.ImportConfidence,
		}, nil
	} else if !errors.Is(err, leads.ErrLeadNotFound) {
		return Result{Status: StatusError, Reason: ReasonPersistFailure}, fmt.Errorf("ingest: dedup lookup: %w", err)
	}

	started := time.Now()
	fields, err := s.extractor.Extract(ctx, msg.Text)
	s.metrics.ObserveExtractionLatency(time.Since(started).Seconds())
	if err != nil {
		if errors.Is(err, extract.ErrUnavailable) {
			return Result{Status: StatusError, Reason: ReasonExtractorDown}, err
		}
		return Result{Status: StatusError, Reason: ReasonExtractorDown}, fmt.Errorf("%w: %w", extract.ErrUnavailable, err)
	}

	// Confidence reflects what the extractor pulled from the message alone;
	// the sender-phone fallback below must not earn the phone point.
	confidence := extract.Score(fields)

	normalized := phone.Normalize(fields.CustomerPhone, msg.SenderPhone)
	if normalized == "" {
		s.logger.Info("message skipped: no usable phone", "message_id", dedupKey)
		return skipped(ReasonInvalidPhone), nil
	}
	fields.CustomerPhone = normalized

	address := strings.TrimSpace(fields.LocationAddress)
	if len(address) < minAddressLen {
		s.logger.Info("message skipped: no usable address", "message_id", dedupKey)
		return skipped(ReasonNoAddress), nil
	}
	fields.LocationAddress = address

	point := s.locate(ctx, address)

	status := leads.StatusPending
	if s.settings.AutoApprove(ctx) {
		status = leads.StatusOpen
	}

	serviceType := string(fields.ServiceType)
	if serviceType == "" {
		serviceType = string(extract.ServiceOther)
	}

	lead := &leads.Lead{
		ServiceType:         serviceType,
		CustomerName:        fields.CustomerName,
		CustomerPhone:       fields.CustomerPhone,
		LocationAddress:     fields.LocationAddress,
		LocationLat:         point.Lat,
		LocationLng:         point.Lng,
		SpecialInstructions: fields.SpecialInstructions,
		Status:              status,
		Source:              msg.Source,
		RawMessage:          msg.Text,
		WhatsAppMessageID:   dedupKey,
		ImportConfidence:    confidence,
		CreatedByUserID:     s.cfg.SystemUserID,
		LeadGeneratorName:   msg.SenderName,
		LeadGeneratorPhone:  phone.Normalize("", msg.SenderPhone),
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		if errors.Is(err, leads.ErrDuplicateMessage) {
			// A concurrent delivery won the insert race.
			if existing, lookupErr := s.repo.GetByMessageID(ctx, dedupKey); lookupErr == nil {
				return Result{
					Status:     StatusDuplicate,
					LeadID:     existing.ID,
					LeadCode:   existing.LeadCode,
					Confidence: existing.ImportConfidence,
				}, nil
			}
			return Result{Status: StatusDuplicate}, nil
		}
		return Result{Status: StatusError, Reason: ReasonPersistFailure}, fmt.Errorf("ingest: persist lead: %w", err)
	}

	s.metrics.ObserveLeadCreated(string(created.Source), string(created.Status))
	s.logger.Info("lead created",
		"lead_id", created.ID,
		"lead_code", created.LeadCode,
		"source", created.Source,
		"status", created.Status,
		"confidence", confidence,
	)

	s.publish(ctx, created, false)

	return Result{
		Status:     StatusSuccess,
		LeadID:     created.ID,
		LeadCode:   created.LeadCode,
		Confidence: confidence,
	}, nil
}

// locate geocodes the address, falling back to the configured centroid. A
// geocode miss never fails ingestion.
func (s *Service) locate(ctx context.Context, address string) geocode.Point {
	if s.geocoder != nil {
		point, err := s.geocoder.Geocode(ctx, address)
		if err != nil {
			s.logger.Warn("geocoder misconfigured, using default centroid", "error", err)
		} else if point != nil {
			return *point
		}
	}
	return s.cfg.DefaultCentroid
}

func (s *Service) publish(ctx context.Context, lead *leads.Lead, reviewed bool) {
	if s.publisher == nil {
		return
	}
	evt := notify.LeadCreatedEvent{
		LeadID:      lead.ID,
		LeadCode:    lead.LeadCode,
		ServiceType: lead.ServiceType,
		Lat:         lead.LocationLat,
		Lng:         lead.LocationLng,
		Address:     lead.LocationAddress,
		Status:      string(lead.Status),
		Confidence:  lead.ImportConfidence,
		Reviewed:    reviewed,
		CreatedAt:   lead.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("lead fan-out publish failed", "error", err, "lead_id", lead.ID)
	}
}
