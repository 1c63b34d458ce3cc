package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sevagully/lead-platform/cmd/mainconfig"
	"github.com/sevagully/lead-platform/internal/api/router"
	"github.com/sevagully/lead-platform/internal/channels/groupbot"
	"github.com/sevagully/lead-platform/internal/channels/meta"
	"github.com/sevagully/lead-platform/internal/channels/msg91"
	appconfig "github.com/sevagully/lead-platform/internal/config"
	"github.com/sevagully/lead-platform/internal/extract"
	"github.com/sevagully/lead-platform/internal/geocode"
	"github.com/sevagully/lead-platform/internal/ingest"
	"github.com/sevagully/lead-platform/internal/leads"
	"github.com/sevagully/lead-platform/internal/notify"
	"github.com/sevagully/lead-platform/internal/observability/metrics"
	"github.com/sevagully/lead-platform/internal/providers"
	"github.com/sevagully/lead-platform/internal/queue"
	"github.com/sevagully/lead-platform/internal/settings"
	"github.com/sevagully/lead-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(reg)

	// Storage. The in-memory repository keeps local runs dependency-free.
	var (
		repo   leads.Repository
		finder providers.Finder
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = leads.NewPostgresRepository(pool)
		finder = providers.NewPostgresFinder(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory lead store")
		repo = leads.NewInMemoryRepository()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Extraction.
	var extractor extract.Extractor
	switch cfg.ExtractorProvider {
	case "bedrock":
		bedrockExtractor, err := extract.NewBedrockExtractor(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if err != nil {
			logger.Error("failed to create bedrock extractor", "error", err)
			os.Exit(1)
		}
		extractor = bedrockExtractor
	default:
		geminiExtractor, err := extract.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini extractor", "error", err)
			os.Exit(1)
		}
		defer func() { _ = geminiExtractor.Close() }()
		extractor = geminiExtractor
	}
	if cfg.ExtractorMaxRetries > 0 {
		extractor = extract.WithRetries(extractor, cfg.ExtractorMaxRetries)
	}

	// Geocoding is optional; without a key every lead lands on the default
	// centroid.
	var geocoder geocode.Client
	if cfg.GeocoderAPIKey != "" {
		geocoder, err = geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, cfg.GeocoderCountry,
			geocode.WithFallbackURL(cfg.FallbackGeocoderBaseURL),
			geocode.WithRateLimit(cfg.GeocoderRateLimit),
			geocode.WithStageObserver(ingestMetrics.ObserveGeocodeStage),
		)
		if err != nil {
			logger.Error("failed to create geocoder", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("GEOCODER_API_KEY not set, leads will use the default centroid")
	}

	// Settings store: redis when available, static default otherwise.
	var settingsStore settings.Store = settings.Static{AutoApproveLeads: cfg.AutoApproveDefault}
	var settingsHandler *settings.Handler
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisStore := settings.NewRedisStore(redis.NewClient(redisOpts), cfg.AutoApproveDefault, logger)
		settingsStore = redisStore
		settingsHandler = settings.NewHandler(redisStore, logger)
	}

	// Fan-out queue. The memory queue runs the notification worker in-process
	// for single-binary deployments.
	var (
		notifyQueue queue.Client
		worker      *notify.Worker
	)
	switch {
	case cfg.UseMemoryQueue:
		notifyQueue = queue.NewMemoryQueue(256)
		notifySvc := notify.NewService(
			finder,
			notify.NewLogSMSSender(logger),
			notify.NewLogPushSender(logger),
			buildEmailSender(cfg, awsCfg, logger),
			notify.ServiceConfig{
				RadiusKm:        cfg.NotifyRadiusKm,
				ReviewThreshold: cfg.ReviewThreshold,
				ModeratorEmails: splitEmails(cfg.ModeratorEmails),
			},
			logger,
		)
		worker = notify.NewWorker(notifySvc, notifyQueue, logger, notify.WithWorkerCount(cfg.WorkerCount))
		worker.Start(ctx)
	case cfg.NotifyQueueURL != "":
		notifyQueue = queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
	default:
		logger.Warn("no notification queue configured, lead fan-out disabled")
	}

	var publisher ingest.EventPublisher
	if notifyQueue != nil {
		publisher = notify.NewPublisher(notifyQueue)
	}

	ingestSvc := ingest.NewService(repo, extractor, geocoder, settingsStore, publisher, ingestMetrics, ingest.ServiceConfig{
		SystemUserID:    cfg.SystemUserID,
		DefaultCentroid: geocode.Point{Lat: cfg.DefaultCentroidLat, Lng: cfg.DefaultCentroidLng},
	}, logger)

	r := router.New(&router.Config{
		Logger:          logger,
		MetaHandler:     meta.NewHandler(cfg.MetaVerifyToken, cfg.MetaAppSecret, ingestSvc, ingestMetrics, logger),
		MSG91Handler:    msg91.NewHandler(cfg.MSG91AuthKey, ingestSvc, ingestMetrics, logger),
		GroupBotHandler: groupbot.NewHandler(cfg.GroupBotToken, ingestSvc, cfg.GroupBotCacheSize, ingestMetrics, logger),
		LeadsHandler:    leads.NewHandler(repo, logger),
		IngestHandler:   ingest.NewHandler(ingestSvc, logger),
		SettingsHandler: settingsHandler,
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if worker != nil {
		worker.Wait()
	}
	logger.Info("shutdown complete")
}

// buildEmailSender picks the configured email provider. A nil sender simply
// disables moderator alerts.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
	case "ses":
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	return nil
}

func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
