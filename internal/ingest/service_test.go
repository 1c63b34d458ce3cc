package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/geocode"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/notify"
	"github.com/sevagully/lead-platform/internal/settings"
)

var mumbaiCentroid = geocode.Point{Lat: 19.0760, Lng: 72.8777}

type stubExtractor struct {
	fields extract.Fields
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, rawText string) (extract.Fields, error) {
	s.calls++
	return s.fields, s.err
}

type stubGeocoder struct {
	point *geocode.Point
	err   error
	calls int
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (*geocode.Point, error) {
	s.calls++
	return s.point, s.err
}

type recordingPublisher struct {
	events []notify.LeadCreatedEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, evt notify.LeadCreatedEvent) error {
	r.events = append(r.events, evt)
	return r.err
}

func fullFields() extract.Fields {
	return extract.Fields{
		CustomerName:        "Ramesh Sharma",
		CustomerPhone:       "9876543210",
		LocationAddress:     "Flat 101, Shanti Nagar, Thane",
		ServiceType:         extract.ServiceRentAgreement,
		SpecialInstructions: "Urgent, need by evening",
	}
}

type fixture struct {
	repo      *leads.InMemoryRepository
	extractor *stubExtractor
	geocoder  *stubGeocoder
	publisher *recordingPublisher
	service   *Service
}

func newFixture(t *testing.T, autoApprove bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:      leads.NewInMemoryRepository(),
		extractor: &stubExtractor{fields: fullFields()},
		geocoder:  &stubGeocoder{point: &geocode.Point{Lat: 19.2183, Lng: 72.9781}},
		publisher: &recordingPublisher{},
	}
	f.service = NewService(f.repo, f.extractor, f.geocoder, settings.Static{AutoApproveLeads: autoApprove}, f.publisher, nil, ServiceConfig{
		SystemUserID:    "system",
		DefaultCentroid: mumbaiCentroid,
	}, nil)
	return f
}

func whatsappMessage() InboundMessage {
	return InboundMessage{
		Channel:     "meta",
		MessageID:   "wamid.test.1",
		SenderPhone: "919876543210",
		SenderName:  "Ramesh Sharma",
		Text:        "Ramesh Sharma 9876543210 flat 101 shanti nagar thane urgent need by evening",
		Timestamp:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Source:      leads.SourceWhatsApp,
	}
}

func TestIngestEndToEnd(t *testing.T) {
	f := newFixture(t, true)

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.NotEmpty(t, result.LeadID)
	assert.Equal(t, 100, result.Confidence)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, leads.StatusOpen, lead.Status)
	assert.Equal(t, "9876543210", lead.CustomerPhone)
	assert.Equal(t, "Flat 101, Shanti Nagar, Thane", lead.LocationAddress)
	assert.Equal(t, "Urgent, need by evening", lead.SpecialInstructions)
	assert.InDelta(t, 19.2183, lead.LocationLat, 1e-6)
	assert.Equal(t, "system", lead.CreatedByUserID)
	assert.Equal(t, "Ramesh Sharma", lead.LeadGeneratorName)
	assert.Equal(t, "9876543210", lead.LeadGeneratorPhone)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, result.LeadID, f.publisher.events[0].LeadID)
	assert.False(t, f.publisher.events[0].Reviewed)
	assert.Equal(t, 100, f.publisher.events[0].Confidence)
}

func TestIngestModerationQueueWhenAutoApproveOff(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, leads.StatusPending, lead.Status)
}

func TestIngestEmptyMessageSkipsBeforeExtraction(t *testing.T) {
	f := newFixture(t, true)

	msg := whatsappMessage()
	msg.Text = "   "

	result, err := f.service.Ingest(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, ReasonEmptyMessage, result.Reason)
	assert.Zero(t, f.extractor.calls)
}

func TestIngestDuplicateMessage(t *testing.T) {
	f := newFixture(t, true)

	first, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)

	second, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)

	assert.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, first.LeadID, second.LeadID)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, 1, f.extractor.calls)
	assert.Len(t, f.publisher.events, 1)
}

func TestIngestExtractorOutageIsRetryable(t *testing.T) {
	f := newFixture(t, true)
	f.extractor.err = extract.ErrUnavailable

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	assert.ErrorIs(t, err, extract.ErrUnavailable)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, ReasonExtractorDown, result.Reason)

	// Nothing was recorded, so a redelivery after recovery succeeds.
	f.extractor.err = nil
	retried, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, retried.Status)
}

func TestIngestInvalidPhoneSkips(t *testing.T) {
	f := newFixture(t, true)
	fields := fullFields()
	fields.CustomerPhone = ""
	f.extractor.fields = fields

	msg := whatsappMessage()
	msg.SenderPhone = "12345"

	result, err := f.service.Ingest(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, ReasonInvalidPhone, result.Reason)
}

func TestIngestSenderPhoneFallback(t *testing.T) {
	f := newFixture(t, true)
	fields := fullFields()
	fields.CustomerPhone = ""
	f.extractor.fields = fields

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", lead.CustomerPhone)
}

func TestIngestShortAddressSkips(t *testing.T) {
	f := newFixture(t, true)
	fields := fullFields()
	fields.LocationAddress = "abc"
	f.extractor.fields = fields

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, ReasonNoAddress, result.Reason)
	assert.Zero(t, f.geocoder.calls)
}

func TestIngestGeocodeMissUsesDefaultCentroid(t *testing.T) {
	f := newFixture(t, true)
	f.geocoder.point = nil

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.InDelta(t, mumbaiCentroid.Lat, lead.LocationLat, 1e-6)
	assert.InDelta(t, mumbaiCentroid.Lng, lead.LocationLng, 1e-6)
}

func TestIngestSynthesizesDedupKey(t *testing.T) {
	f := newFixture(t, true)

	msg := whatsappMessage()
	msg.MessageID = ""
	msg.Channel = "groupbot"

	result, err := f.service.Ingest(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "groupbot_919876543210_1768471200", lead.WhatsAppMessageID)

	// Same synthesized key dedupes the redelivery.
	second, err := f.service.Ingest(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, second.Status)
}

func TestIngestPublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, true)
	f.publisher.err = errors.New("queue down")

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestIngestFallbackPhoneDoesNotInflateConfidence(t *testing.T) {
	f := newFixture(t, true)
	f.extractor.fields = extract.Fields{
		LocationAddress: "Flat 101, Shanti Nagar, Thane",
		ServiceType:     extract.ServiceRentAgreement,
	}

	result, err := f.service.Ingest(context.Background(), whatsappMessage())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	// Address (1.5) + service type (1) only; the sender-phone fallback fills
	// the lead's phone but earns no point.
	assert.Equal(t, 63, result.Confidence)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", lead.CustomerPhone)
	assert.Equal(t, 63, lead.ImportConfidence)
}

func TestPreviewFallbackPhoneDoesNotInflateConfidence(t *testing.T) {
	f := newFixture(t, true)
	f.extractor.fields = extract.Fields{
		LocationAddress: "Flat 101, Shanti Nagar, Thane",
		ServiceType:     extract.ServiceRentAgreement,
	}

	preview, err := f.service.PreviewExtract(context.Background(), "some message", "919876543210", "")
	require.NoError(t, err)
	assert.Equal(t, 63, preview.Confidence)
	assert.Equal(t, "9876543210", preview.Fields.CustomerPhone)
}

func TestPreviewExtractHasNoSideEffects(t *testing.T) {
	f := newFixture(t, true)

	preview, err := f.service.PreviewExtract(context.Background(), "some message", "919876543210", "Ramesh Sharma")
	require.NoError(t, err)
	assert.Equal(t, 100, preview.Confidence)
	assert.Equal(t, "9876543210", preview.Fields.CustomerPhone)
	assert.Equal(t, "Ramesh Sharma", preview.LeadGeneratorName)

	got, err := f.repo.List(context.Background(), leads.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.publisher.events)
	assert.Zero(t, f.geocoder.calls)
}

func TestCommitPersistsAdminFields(t *testing.T) {
	f := newFixture(t, false) // auto-approve off must not matter for commits

	result, err := f.service.Commit(context.Background(), CommitRequest{
		CustomerName:        "Sunita",
		CustomerPhone:       "+91 98200 12345",
		LocationAddress:     "B-404, Green Park, Malad East",
		ServiceType:         "ac_service",
		SpecialInstructions: "Tomorrow morning",
		Lat:                 19.1860,
		Lng:                 72.8484,
		RawMessage:          "original forwarded text",
		AdminUserID:         "admin-1",
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, leads.StatusOpen, lead.Status)
	assert.Equal(t, leads.SourceManual, lead.Source)
	assert.Equal(t, "9820012345", lead.CustomerPhone)
	assert.Equal(t, "admin-1", lead.CreatedByUserID)
	assert.InDelta(t, 19.1860, lead.LocationLat, 1e-6)
	assert.Zero(t, f.geocoder.calls)
	require.Len(t, f.publisher.events, 1)
	assert.True(t, f.publisher.events[0].Reviewed)
}

func TestCommitWithoutPinUsesDefaultCentroid(t *testing.T) {
	f := newFixture(t, true)

	result, err := f.service.Commit(context.Background(), CommitRequest{
		CustomerPhone:   "9820012345",
		LocationAddress: "Green Park, Malad East",
		ServiceType:     "cleaning",
		AdminUserID:     "admin-1",
	})
	require.NoError(t, err)

	lead, err := f.repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.InDelta(t, mumbaiCentroid.Lat, lead.LocationLat, 1e-6)
}

func TestCommitRejectsBadPhone(t *testing.T) {
	f := newFixture(t, true)

	result, err := f.service.Commit(context.Background(), CommitRequest{
		CustomerPhone:   "12345",
		LocationAddress: "Green Park, Malad East",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, ReasonInvalidPhone, result.Reason)
}
