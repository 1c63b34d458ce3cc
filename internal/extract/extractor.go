package extract

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks a transient extraction failure (provider down, quota,
// malformed response). Callers treat it as retryable and must not record the
// message as processed.
var ErrUnavailable = errors.New("extract: extraction unavailable")

// Extractor produces structured fields from raw message text.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (Fields, error)
}

// Retrying wraps an Extractor with bounded retries for transient failures.
type Retrying struct {
	inner   Extractor
	retries int
	backoff time.Duration
}

// WithRetries decorates inner with up to retries additional attempts.
func WithRetries(inner Extractor, retries int) *Retrying {
	if retries < 0 {
		retries = 0
	}
	return &Retrying{inner: inner, retries: retries, backoff: 500 * time.Millisecond}
}

// Extract retries only failures marked ErrUnavailable.
func (r *Retrying) Extract(ctx context.Context, rawText string) (Fields, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Fields{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}
		fields, err := r.inner.Extract(ctx, rawText)
		if err == nil {
			return fields, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return Fields{}, err
		}
		lastErr = err
	}
	return Fields{}, lastErr
}
