// Package geocode resolves free-text Indian addresses to coordinates using a
// keyed primary provider with comma-segment degradation and a keyless
// secondary provider as last resort.
package geocode

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside plausible coordinate bounds
// and is not the (0,0) null island artifact.
func (p Point) Valid() bool {
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Client resolves an address to a coordinate. A nil Point with a nil error
// means the address could not be resolved; errors are reserved for
// misconfiguration.
type Client interface {
	Geocode(ctx context.Context, address string) (*Point, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client for all provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for primary provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithFallbackURL enables the keyless secondary provider.
func WithFallbackURL(baseURL string) Option {
	return func(g *geocoder) {
		g.fallbackURL = strings.TrimRight(baseURL, "/")
	}
}

// WithStageObserver registers a callback invoked with the cascade stage that
// produced a hit ("full", "segments3", "segments2", "secondary").
func WithStageObserver(fn func(stage string)) Option {
	return func(g *geocoder) {
		g.observeStage = fn
	}
}

type geocoder struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	country      string
	fallbackURL  string
	limiter      *rate.Limiter
	observeStage func(stage string)
}

// NewClient creates a geocoding Client. baseURL and apiKey identify the
// primary provider; country restricts its matches.
func NewClient(baseURL, apiKey, country string, opts ...Option) (Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("geocode: base url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("geocode: api key is required")
	}

	g := &geocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		country:    country,
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Geocode tries the full address against the primary provider, then coarser
// comma-segment variants, then the secondary provider with the original
// string. Provider failures degrade to the next stage rather than erroring.
func (g *geocoder) Geocode(ctx context.Context, address string) (*Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	for _, v := range variants(address) {
		point, err := g.queryPrimary(ctx, v.query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil
			}
			continue
		}
		if point != nil {
			g.hit(v.stage)
			return point, nil
		}
	}

	if g.fallbackURL != "" {
		if point, err := g.querySecondary(ctx, address); err == nil && point != nil {
			g.hit("secondary")
			return point, nil
		}
	}
	return nil, nil
}

func (g *geocoder) hit(stage string) {
	if g.observeStage != nil {
		g.observeStage(stage)
	}
}

type variant struct {
	stage string
	query string
}

// variants returns the full address followed by its last-3 and last-2
// comma-segment reductions, skipping duplicates.
func variants(address string) []variant {
	out := []variant{{stage: "full", query: address}}

	segments := splitSegments(address)
	if tail := joinTail(segments, 3); tail != "" && tail != address {
		out = append(out, variant{stage: "segments3", query: tail})
	}
	if tail := joinTail(segments, 2); tail != "" && tail != address {
		out = append(out, variant{stage: "segments2", query: tail})
	}
	return out
}

func splitSegments(address string) []string {
	parts := strings.Split(address, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func joinTail(segments []string, n int) string {
	if len(segments) <= n {
		return ""
	}
	return strings.Join(segments[len(segments)-n:], ", ")
}
