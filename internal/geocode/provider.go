package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Both providers answer with a GeoJSON-ish feature list where center is
// [longitude, latitude].
type featureResponse struct {
	Features []struct {
		Center []float64 `json:"center"`
	} `json:"features"`
}

func (g *geocoder) queryPrimary(ctx context.Context, query string) (*Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode: rate limit: %w", err)
	}

	params := url.Values{
		"access_token": {g.apiKey},
		"limit":        {"1"},
	}
	if g.country != "" {
		params.Set("country", g.country)
	}
	reqURL := g.baseURL + "/" + url.PathEscape(query) + ".json?" + params.Encode()
	return g.fetch(ctx, reqURL)
}

func (g *geocoder) querySecondary(ctx context.Context, query string) (*Point, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	return g.fetch(ctx, g.fallbackURL+"?"+params.Encode())
}

func (g *geocoder) fetch(ctx context.Context, reqURL string) (*Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: provider returned status %d", resp.StatusCode)
	}

	var parsed featureResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geocode: parse response: %w", err)
	}
	if len(parsed.Features) == 0 || len(parsed.Features[0].Center) < 2 {
		return nil, nil
	}

	point := Point{
		Lat: parsed.Features[0].Center[1],
		Lng: parsed.Features[0].Center[0],
	}
	if !point.Valid() {
		return nil, nil
	}
	return &point, nil
}
