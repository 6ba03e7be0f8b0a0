package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/moyoez/diary-upload-go/types"
)

func newWeatherServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "-31.95" || q.Get("lon") != "115.86" || q.Get("units") != "metric" || q.Get("appid") != "k" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(types.WeatherConfig{BaseURL: srv.URL, APIKey: "k", Units: "metric", CacheSec: 60}, srv.Client())
}

var perth = &Location{Latitude: -31.95, Longitude: 115.86}

func TestDescribeRendersReport(t *testing.T) {
	srv, hits := newWeatherServer(t, `{"name":"Perth","main":{"temp":18.5},"weather":[{"description":"clear sky"}]}`, http.StatusOK)
	c := newTestClient(srv)

	if got := c.Describe(context.Background(), perth); got != "Perth: clear sky, 18.5°C" {
		t.Errorf("Describe = %q", got)
	}
	// second call is served from the cache
	_ = c.Describe(context.Background(), perth)
	if hits.Load() != 1 {
		t.Errorf("provider hits = %d, want 1", hits.Load())
	}
}

func TestDescribeWholeDegrees(t *testing.T) {
	srv, _ := newWeatherServer(t, `{"name":"Perth","main":{"temp":20},"weather":[{"description":"few clouds"}]}`, http.StatusOK)
	if got := newTestClient(srv).Describe(context.Background(), perth); got != "Perth: few clouds, 20°C" {
		t.Errorf("Describe = %q", got)
	}
}

func TestDescribeFallbacks(t *testing.T) {
	cases := map[string]struct {
		body   string
		status int
	}{
		"provider error": {`{"cod":401,"message":"bad key"}`, http.StatusUnauthorized},
		"no conditions":  {`{"name":"Perth","main":{"temp":1},"weather":[]}`, http.StatusOK},
		"not json":       {`<html></html>`, http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newWeatherServer(t, tc.body, tc.status)
			if got := newTestClient(srv).Describe(context.Background(), perth); got != TextUnavailable {
				t.Errorf("Describe = %q, want %q", got, TextUnavailable)
			}
		})
	}
}

func TestDescribeWithoutLocation(t *testing.T) {
	c := NewClient(types.WeatherConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	if got := c.Describe(context.Background(), nil); got != TextPermissionDenied {
		t.Errorf("Describe = %q, want %q", got, TextPermissionDenied)
	}
}

func TestLocationFromConfig(t *testing.T) {
	lat, lon := 1.5, 2.5
	if LocationFromConfig(types.LocationConfig{Latitude: &lat}) != nil {
		t.Error("a half-set location must be treated as unavailable")
	}
	loc := LocationFromConfig(types.LocationConfig{Latitude: &lat, Longitude: &lon})
	if loc == nil || loc.Latitude != 1.5 || loc.Longitude != 2.5 {
		t.Errorf("unexpected location %+v", loc)
	}
}
