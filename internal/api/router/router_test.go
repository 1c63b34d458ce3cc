package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevagully/lead-platform/internal/channels/groupbot"
	"github.com/sevagully/lead-platform/internal/channels/meta"
	"github.com/sevagully/lead-platform/internal/channels/msg91"
	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/geocode"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/settings"
)

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, rawText string) (extract.Fields, error) {
	return extract.Fields{
		CustomerPhone:   "9876543210",
		LocationAddress: "Flat 101, Shanti Nagar, Thane",
		ServiceType:     extract.ServicePlumbing,
	}, nil
}

func newTestRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()
	repo := leads.NewInMemoryRepository()
	svc := ingest.NewService(repo, stubExtractor{}, nil, settings.Static{AutoApproveLeads: true}, nil, nil, ingest.ServiceConfig{
		DefaultCentroid: geocode.Point{Lat: 19.0760, Lng: 72.8777},
	}, nil)

	return New(&Config{
		MetaHandler:     meta.NewHandler("verify-token", "", svc, nil, nil),
		MSG91Handler:    msg91.NewHandler("msg91-key", svc, nil, nil),
		GroupBotHandler: groupbot.NewHandler("bot-token", svc, 0, nil, nil),
		LeadsHandler:    leads.NewHandler(repo, nil),
		IngestHandler:   ingest.NewHandler(svc, nil),
		AdminAuthSecret: adminSecret,
	})
}

func adminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, "secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetaVerificationRoute(t *testing.T) {
	r := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/webhooks/meta?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestMSG91WebhookRoute(t *testing.T) {
	r := newTestRouter(t, "secret")

	body := `{"sender":"919876543210","text":"need plumber thane west near station","message_uuid":"uuid-9"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/msg91", strings.NewReader(body))
	req.Header.Set("authkey", "msg91-key")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)
}

func TestGroupBotWebhookRequiresToken(t *testing.T) {
	r := newTestRouter(t, "secret")

	body := `{"message_id":"m-1","message":"need plumber","sender_phone":"919876543210"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/groupbot", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	r := newTestRouter(t, "secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPreviewRoute(t *testing.T) {
	r := newTestRouter(t, "secret")

	body := `{"raw_message":"need plumber thane west","sender_phone":"919876543210"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/leads/preview", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confidence"`)
}
