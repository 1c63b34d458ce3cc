package notify

import (
	"context"

	"github.com/sevagully/lead-platform/pkg/logging"
)

// LogSMSSender logs instead of sending; the default until a gateway account
// is provisioned.
type LogSMSSender struct {
	logger *logging.Logger
}

func NewLogSMSSender(logger *logging.Logger) *LogSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("sms (log only)", "to", to, "body", body)
	return nil
}

// LogPushSender logs instead of sending push notifications.
type LogPushSender struct {
	logger *logging.Logger
}

func NewLogPushSender(logger *logging.Logger) *LogPushSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogPushSender{logger: logger}
}

func (s *LogPushSender) SendPush(ctx context.Context, token, title, body string) error {
	s.logger.Info("push (log only)", "token", token, "title", title, "body", body)
	return nil
}
