package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevagully/lead-platform/internal/providers"
	"github.com/sevagully/lead-platform/pkg/logging"
)

// SMSSender sends SMS alerts to providers.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// PushSender sends mobile push alerts to providers.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string) error
}

// Service dispatches alerts for one lead-created event: nearby providers get
// SMS/push, and low-confidence imports get a moderator email.
type Service struct {
	finder          providers.Finder
	sms             SMSSender
	push            PushSender
	email           EmailSender
	moderatorEmails []string
	radiusKm        float64
	reviewThreshold int
	logger          *logging.Logger
}

// ServiceConfig bundles the fan-out knobs.
type ServiceConfig struct {
	RadiusKm        float64
	ReviewThreshold int
	ModeratorEmails []string
}

// NewService creates a notification fan-out service. Any sender may be nil;
// the corresponding channel is skipped.
func NewService(finder providers.Finder, sms SMSSender, push PushSender, email EmailSender, cfg ServiceConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = 10
	}
	if cfg.ReviewThreshold <= 0 {
		cfg.ReviewThreshold = 70
	}
	return &Service{
		finder:          finder,
		sms:             sms,
		push:            push,
		email:           email,
		moderatorEmails: cfg.ModeratorEmails,
		radiusKm:        cfg.RadiusKm,
		reviewThreshold: cfg.ReviewThreshold,
		logger:          logger,
	}
}

// HandleLeadCreated notifies nearby providers, then alerts moderators when
// the import confidence sits below the review threshold.
func (s *Service) HandleLeadCreated(ctx context.Context, evt LeadCreatedEvent) error {
	var errs []error
	if err := s.notifyProviders(ctx, evt); err != nil {
		errs = append(errs, err)
	}
	if !evt.Reviewed && evt.Confidence < s.reviewThreshold {
		if err := s.alertModerators(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) notifyProviders(ctx context.Context, evt LeadCreatedEvent) error {
	if s.finder == nil {
		s.logger.Debug("notify: provider finder not configured, skipping fan-out")
		return nil
	}

	nearby, err := s.finder.FindNearby(ctx, evt.Lat, evt.Lng, s.radiusKm, evt.ServiceType)
	if err != nil {
		return fmt.Errorf("notify: find nearby providers: %w", err)
	}
	if len(nearby) == 0 {
		s.logger.Info("notify: no providers in radius", "lead_id", evt.LeadID, "service_type", evt.ServiceType)
		return nil
	}

	body := fmt.Sprintf("New %s lead %s near %s. Open the app to claim it.", evt.ServiceType, evt.LeadCode, locationLabel(evt))
	var errs []error
	for _, p := range nearby {
		if s.sms != nil && p.Phone != "" {
			if err := s.sms.SendSMS(ctx, p.Phone, body); err != nil {
				s.logger.Warn("notify: sms failed", "error", err, "provider_id", p.ID, "lead_id", evt.LeadID)
				errs = append(errs, err)
			}
		}
		if s.push != nil && p.PushToken != "" {
			if err := s.push.SendPush(ctx, p.PushToken, "New lead nearby", body); err != nil {
				s.logger.Warn("notify: push failed", "error", err, "provider_id", p.ID, "lead_id", evt.LeadID)
				errs = append(errs, err)
			}
		}
	}

	s.logger.Info("notify: lead fan-out complete", "lead_id", evt.LeadID, "providers", len(nearby))
	return errors.Join(errs...)
}

func (s *Service) alertModerators(ctx context.Context, evt LeadCreatedEvent) error {
	if s.email == nil || len(s.moderatorEmails) == 0 {
		s.logger.Debug("notify: moderator alerts not configured", "lead_id", evt.LeadID)
		return nil
	}

	subject := fmt.Sprintf("Lead %s needs review (%d%% confidence)", evt.LeadCode, evt.Confidence)
	body := fmt.Sprintf(`Lead %s was imported with %d%% confidence and needs a manual check.

Service: %s
Address: %s
Status: %s

Review it in the admin panel.`, evt.LeadCode, evt.Confidence, evt.ServiceType, evt.Address, evt.Status)

	var errs []error
	for _, to := range s.moderatorEmails {
		if err := s.email.Send(ctx, EmailMessage{To: to, Subject: subject, Body: body}); err != nil {
			s.logger.Warn("notify: moderator email failed", "error", err, "to", to, "lead_id", evt.LeadID)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func locationLabel(evt LeadCreatedEvent) string {
	if evt.Address != "" {
		return evt.Address
	}
	return fmt.Sprintf("%.4f,%.4f", evt.Lat, evt.Lng)
}
