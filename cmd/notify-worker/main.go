package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sevagully/lead-platform/cmd/mainconfig"
	appconfig "github.com/sevagully/lead-platform/internal/config"
	"github.com/sevagully/lead-platform/internal/notify"
	"github.com/sevagully/lead-platform/internal/providers"
	"github.com/sevagully/lead-platform/internal/queue"
	"github.com/sevagully/lead-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead-platform notify worker", "env", cfg.Env)

	if cfg.NotifyQueueURL == "" {
		logger.Error("NOTIFY_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var finder providers.Finder
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		finder = providers.NewPostgresFinder(pool)
	} else {
		logger.Warn("DATABASE_URL not set, provider fan-out disabled")
	}

	notifyQueue := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)

	svc := notify.NewService(
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

	worker := notify.NewWorker(svc, notifyQueue, logger, notify.WithWorkerCount(cfg.WorkerCount))
	worker.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down notify worker...")
	cancel()

	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("shutdown timed out")
	}
}

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
