package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/bytedance/sonic"

	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

const (
	TextUnavailable      = "Unable to fetch weather."
	TextPermissionDenied = "Location permission denied"
)

// Location is a resolved position. A nil *Location means the position is
// not available to us, as when a browser user denies the prompt.
type Location struct {
	Latitude  float64
	Longitude float64
}

// LocationFromConfig returns nil unless both coordinates are set.
func LocationFromConfig(cfg types.LocationConfig) *Location {
	if cfg.Latitude == nil || cfg.Longitude == nil {
		return nil
	}
	return &Location{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}
}

type Client struct {
	baseURL string
	apiKey  string
	units   string
	client  *http.Client
	cache   *ttlworker.Cache[string, *types.WeatherReport]
}

func NewClient(cfg types.WeatherConfig, client *http.Client) *Client {
	if client == nil {
		client = tool.GetHttpClient()
	}
	ttl := time.Duration(cfg.CacheSec) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		units:   cfg.Units,
		client:  client,
		cache:   ttlworker.NewCache[string, *types.WeatherReport](ttl),
	}
}

func cacheKey(lat, lon float64) string {
	// ~1 km, plenty for a weather line
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Fetch queries current weather at lat/lon.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*types.WeatherReport, error) {
	key := cacheKey(lat, lon)
	if report := c.cache.Get(key); report != nil {
		return report, nil
	}

	url, err := tool.BuildWeatherURL(c.baseURL, c.apiKey, c.units, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather URL: %v", err)
	}
	req, err := tool.NewHTTPReqWithApplication(http.NewRequestWithContext(ctx, http.MethodGet, url, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %v", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send weather request: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %v", err)
	}
	var answer types.WeatherResponse
	if err := sonic.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %v", err)
	}
	if len(answer.Weather) == 0 {
		return nil, fmt.Errorf("weather response has no conditions")
	}

	report := &types.WeatherReport{
		City:        answer.Name,
		Description: answer.Weather[0].Description,
		Temp:        answer.Main.Temp,
	}
	c.cache.Set(key, report)
	return report, nil
}

// Render formats a report as "{city}: {description}, {temp}°C".
func Render(report *types.WeatherReport) string {
	return fmt.Sprintf("%s: %s, %s°C", report.City, report.Description, strconv.FormatFloat(report.Temp, 'f', -1, 64))
}

// Describe returns the weather line for loc, or one of the fixed fallback texts.
func (c *Client) Describe(ctx context.Context, loc *Location) string {
	if loc == nil {
		return TextPermissionDenied
	}
	report, err := c.Fetch(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		tool.DefaultLogger.Warnf("[Weather] %v", err)
		return TextUnavailable
	}
	return Render(report)
}
