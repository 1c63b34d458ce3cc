// Package settings exposes runtime-tunable platform switches. The only
// consumer-facing switch today is lead auto-approval.
package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevagully/lead-platform/pkg/logging"
)

// Store reads runtime settings. Implementations must be safe for concurrent
// use and must degrade to sane defaults rather than failing ingestion.
type Store interface {
	// AutoApprove reports whether freshly ingested leads skip the moderation
	// queue and open immediately.
	AutoApprove(ctx context.Context) bool
}

// Static is a fixed-value Store for tests and single-tenant deployments
// without redis.
type Static struct {
	AutoApproveLeads bool
}

func (s Static) AutoApprove(ctx context.Context) bool {
	return s.AutoApproveLeads
}

const autoApproveKey = "settings:auto_approve_leads"

// RedisStore reads settings from redis so admins can flip them without a
// redeploy. Missing keys and redis outages fall back to the configured
// default.
type RedisStore struct {
	client       *redis.Client
	defaultValue bool
	logger       *logging.Logger
}

// NewRedisStore creates a redis-backed Store.
func NewRedisStore(client *redis.Client, defaultValue bool, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{
		client:       client,
		defaultValue: defaultValue,
		logger:       logger,
	}
}

func (s *RedisStore) AutoApprove(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := s.client.Get(ctx, autoApproveKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("settings: redis read failed, using default", "error", err, "default", s.defaultValue)
		}
		return s.defaultValue
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("settings: malformed auto_approve value, using default", "value", raw)
		return s.defaultValue
	}
	return value
}

// SetAutoApprove writes the switch; used by the admin settings endpoint.
func (s *RedisStore) SetAutoApprove(ctx context.Context, value bool) error {
	return s.client.Set(ctx, autoApproveKey, strconv.FormatBool(value), 0).Err()
}
