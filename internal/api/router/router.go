// Package router assembles the HTTP surface: public webhook endpoints for
// each inbound channel and the JWT-protected admin API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevagully/lead-platform/internal/channels/groupbot"
	"github.com/sevagully/lead-platform/internal/channels/meta"
	"github.com/sevagully/lead-platform/internal/channels/msg91"
	httpmiddleware "github.com/sevagully/lead-platform/internal/http/middleware"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/settings"
	"github.com/sevagully/lead-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	MetaHandler     *meta.Handler
	MSG91Handler    *msg91.Handler
	GroupBotHandler *groupbot.Handler
	LeadsHandler    *leads.Handler
	IngestHandler   *ingest.Handler
	SettingsHandler *settings.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/webhooks", func(r chi.Router) {
			if cfg.MetaHandler != nil {
				r.Get("/meta", cfg.MetaHandler.HandleVerification)
				r.Post("/meta", cfg.MetaHandler.HandleInbound)
			}
			if cfg.MSG91Handler != nil {
				r.Post("/msg91", cfg.MSG91Handler.HandleInbound)
			}
			if cfg.GroupBotHandler != nil {
				r.Post("/groupbot", cfg.GroupBotHandler.HandleInbound)
			}
		})
	})

	// Admin endpoints behind JWT auth.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

		if cfg.LeadsHandler != nil {
			admin.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.List)
				if cfg.IngestHandler != nil {
					r.Post("/preview", cfg.IngestHandler.Preview)
					r.Post("/commit", cfg.IngestHandler.Commit)
				}
				r.Route("/{leadID}", func(r chi.Router) {
					r.Get("/", cfg.LeadsHandler.Get)
					r.Post("/claim", cfg.LeadsHandler.Claim)
					r.Post("/complete", cfg.LeadsHandler.Complete)
					r.Post("/reject", cfg.LeadsHandler.Reject)
					r.Post("/approve", cfg.LeadsHandler.Approve)
				})
			})
		}

		if cfg.SettingsHandler != nil {
			admin.Route("/settings", func(r chi.Router) {
				r.Get("/auto-approve", cfg.SettingsHandler.GetAutoApprove)
				r.Put("/auto-approve", cfg.SettingsHandler.SetAutoApprove)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
