package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevagully/lead-platform/internal/providers"
	"github.com/sevagully/lead-platform/internal/queue"
)

type stubFinder struct {
	result []providers.Provider
	err    error
	lastST string
}

func (f *stubFinder) FindNearby(ctx context.Context, lat, lng, radiusKm float64, serviceType string) ([]providers.Provider, error) {
	f.lastST = serviceType
	return f.result, f.err
}

type recordingSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recordingSMS) SendSMS(ctx context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return r.err
}

func (r *recordingSMS) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type recordingPush struct {
	tokens []string
}

func (r *recordingPush) SendPush(ctx context.Context, token, title, body string) error {
	r.tokens = append(r.tokens, token)
	return nil
}

type recordingEmail struct {
	msgs []EmailMessage
	err  error
}

func (r *recordingEmail) Send(ctx context.Context, msg EmailMessage) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func sampleEvent(confidence int) LeadCreatedEvent {
	return LeadCreatedEvent{
		LeadID:      "lead-1",
		LeadCode:    "LD-20260115-AB12",
		ServiceType: "plumbing",
		Lat:         19.2183,
		Lng:         72.9781,
		Address:     "Shanti Nagar, Thane",
		Status:      "open",
		Confidence:  confidence,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestHandleLeadCreatedNotifiesNearbyProviders(t *testing.T) {
	finder := &stubFinder{result: []providers.Provider{
		{ID: "p1", Phone: "9812345678", PushToken: "tok-1"},
		{ID: "p2", Phone: "9823456789"},
	}}
	sms := &recordingSMS{}
	push := &recordingPush{}

	svc := NewService(finder, sms, push, nil, ServiceConfig{RadiusKm: 10}, nil)
	require.NoError(t, svc.HandleLeadCreated(context.Background(), sampleEvent(90)))

	assert.Equal(t, []string{"9812345678", "9823456789"}, sms.sent)
	assert.Equal(t, []string{"tok-1"}, push.tokens)
	assert.Equal(t, "plumbing", finder.lastST)
}

func TestHandleLeadCreatedLowConfidenceAlertsModerators(t *testing.T) {
	email := &recordingEmail{}
	svc := NewService(&stubFinder{}, nil, nil, email, ServiceConfig{
		ModeratorEmails: []string{"mod1@example.in", "mod2@example.in"},
	}, nil)

	require.NoError(t, svc.HandleLeadCreated(context.Background(), sampleEvent(55)))

	require.Len(t, email.msgs, 2)
	assert.Contains(t, email.msgs[0].Subject, "needs review")
	assert.Contains(t, email.msgs[0].Subject, "55%")
}

func TestHandleLeadCreatedReviewedSkipsModerators(t *testing.T) {
	finder := &stubFinder{result: []providers.Provider{{ID: "p1", Phone: "9812345678"}}}
	sms := &recordingSMS{}
	email := &recordingEmail{}
	svc := NewService(finder, sms, nil, email, ServiceConfig{
		ModeratorEmails: []string{"mod@example.in"},
	}, nil)

	evt := sampleEvent(63)
	evt.Reviewed = true
	require.NoError(t, svc.HandleLeadCreated(context.Background(), evt))

	// Human-vetted leads still fan out but never re-enter review.
	assert.Equal(t, []string{"9812345678"}, sms.sent)
	assert.Empty(t, email.msgs)
}

func TestHandleLeadCreatedHighConfidenceSkipsModerators(t *testing.T) {
	email := &recordingEmail{}
	svc := NewService(&stubFinder{}, nil, nil, email, ServiceConfig{
		ModeratorEmails: []string{"mod@example.in"},
	}, nil)

	require.NoError(t, svc.HandleLeadCreated(context.Background(), sampleEvent(70)))
	assert.Empty(t, email.msgs)
}

func TestHandleLeadCreatedNoProvidersIsFine(t *testing.T) {
	svc := NewService(&stubFinder{}, &recordingSMS{}, nil, nil, ServiceConfig{}, nil)
	assert.NoError(t, svc.HandleLeadCreated(context.Background(), sampleEvent(90)))
}

func TestHandleLeadCreatedFinderErrorPropagates(t *testing.T) {
	svc := NewService(&stubFinder{err: errors.New("db down")}, nil, nil, nil, ServiceConfig{}, nil)
	assert.Error(t, svc.HandleLeadCreated(context.Background(), sampleEvent(90)))
}

func TestPublisherRoundTripsEvent(t *testing.T) {
	q := queue.NewMemoryQueue(2)
	pub := NewPublisher(q)

	evt := sampleEvent(88)
	require.NoError(t, pub.Publish(context.Background(), evt))

	msgs, err := q.Receive(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, `"lead_code":"LD-20260115-AB12"`)
	assert.Contains(t, msgs[0].Body, `"confidence":88`)
}

func TestWorkerConsumesAndDispatches(t *testing.T) {
	q := queue.NewMemoryQueue(2)
	pub := NewPublisher(q)

	finder := &stubFinder{result: []providers.Provider{{ID: "p1", Phone: "9812345678"}}}
	sms := &recordingSMS{}
	svc := NewService(finder, sms, nil, nil, ServiceConfig{}, nil)

	require.NoError(t, pub.Publish(context.Background(), sampleEvent(90)))

	ctx, cancel := context.WithCancel(context.Background())
	worker := NewWorker(svc, q, nil, WithWorkerCount(1), WithReceiveWaitSeconds(0))
	worker.Start(ctx)

	require.Eventually(t, func() bool {
		return sms.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	worker.Wait()
	assert.Equal(t, []string{"9812345678"}, sms.sent)
}
