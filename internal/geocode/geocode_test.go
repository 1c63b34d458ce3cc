package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureJSON(lng, lat float64) string {
	return fmt.Sprintf(`{"features":[{"center":[%f,%f]}]}`, lng, lat)
}

const emptyJSON = `{"features":[]}`

// primaryServer answers the keyed provider protocol, mapping each decoded
// query string to a canned response body.
func primaryServer(t *testing.T, responses map[string]string, queries *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "in", r.URL.Query().Get("country"))
		assert.NotEmpty(t, r.URL.Query().Get("access_token"))

		path := r.URL.EscapedPath()
		query, err := url.PathUnescape(path[1 : len(path)-len(".json")])
		require.NoError(t, err)
		if queries != nil {
			*queries = append(*queries, query)
		}

		body, ok := responses[query]
		if !ok {
			body = emptyJSON
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestGeocodeFullAddressHit(t *testing.T) {
	srv := primaryServer(t, map[string]string{
		"Flat 101, Shanti Nagar, Thane": featureJSON(72.9781, 19.2183),
	}, nil)
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", "in")
	require.NoError(t, err)

	point, err := client.Geocode(context.Background(), "Flat 101, Shanti Nagar, Thane")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.InDelta(t, 19.2183, point.Lat, 1e-6)
	assert.InDelta(t, 72.9781, point.Lng, 1e-6)
}

func TestGeocodeDegradesToCoarserSegments(t *testing.T) {
	var queries []string
	srv := primaryServer(t, map[string]string{
		"Shanti Nagar, Thane": featureJSON(72.97, 19.21),
	}, &queries)
	defer srv.Close()

	var stages []string
	client, err := NewClient(srv.URL, "test-key", "in",
		WithStageObserver(func(stage string) { stages = append(stages, stage) }))
	require.NoError(t, err)

	point, err := client.Geocode(context.Background(), "Near old temple, Flat 101, Shanti Nagar, Thane")
	require.NoError(t, err)
	require.NotNil(t, point)

	assert.Equal(t, []string{
		"Near old temple, Flat 101, Shanti Nagar, Thane",
		"Flat 101, Shanti Nagar, Thane",
		"Shanti Nagar, Thane",
	}, queries)
	assert.Equal(t, []string{"segments2"}, stages)
}

func TestGeocodeFallsBackToSecondaryWithOriginalString(t *testing.T) {
	srv := primaryServer(t, nil, nil)
	defer srv.Close()

	var fallbackQuery string
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, featureJSON(72.88, 19.07))
	}))
	defer fallback.Close()

	client, err := NewClient(srv.URL, "test-key", "in", WithFallbackURL(fallback.URL))
	require.NoError(t, err)

	original := "Near old temple, Flat 101, Shanti Nagar, Thane"
	point, err := client.Geocode(context.Background(), original)
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, original, fallbackQuery)
}

func TestGeocodeMissReturnsNilNil(t *testing.T) {
	srv := primaryServer(t, nil, nil)
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", "in")
	require.NoError(t, err)

	point, err := client.Geocode(context.Background(), "nowhere at all, really")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestGeocodeProviderErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", "in")
	require.NoError(t, err)

	point, err := client.Geocode(context.Background(), "Shanti Nagar, Thane")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestGeocodeEmptyAddress(t *testing.T) {
	client, err := NewClient("http://geocoder.local", "test-key", "in")
	require.NoError(t, err)

	point, err := client.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient("", "key", "in")
	assert.Error(t, err)

	_, err = NewClient("http://geocoder.local", "", "in")
	assert.Error(t, err)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 19.07, Lng: 72.88}.Valid())
	assert.False(t, Point{}.Valid())
	assert.False(t, Point{Lat: 120, Lng: 72}.Valid())
	assert.False(t, Point{Lat: 19, Lng: 200}.Valid())
}

func TestVariants(t *testing.T) {
	vs := variants("A, B, C, D")
	require.Len(t, vs, 3)
	assert.Equal(t, "A, B, C, D", vs[0].query)
	assert.Equal(t, "B, C, D", vs[1].query)
	assert.Equal(t, "C, D", vs[2].query)

	vs = variants("no commas here")
	require.Len(t, vs, 1)
	assert.Equal(t, "full", vs[0].stage)
}
