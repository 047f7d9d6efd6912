// Package weather looks up historical daily weather through the Visual
// Crossing timeline API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
)

// DefaultBaseURL is the Visual Crossing timeline endpoint.
const DefaultBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// Client implements domain.WeatherProvider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weather client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// DailyWeather returns the observed weather for day at the coordinates.
func (c *Client) DailyWeather(ctx context.Context, lat, lon float64, day time.Time) (domain.Weather, error) {
	start := time.Now()
	w, err := c.fetch(ctx, lat, lon, day)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.Weather{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return w, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, day time.Time) (domain.Weather, error) {
	coord := strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lon, 'f', 6, 64)
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, coord, day.Format(domain.DateLayout))
	params := url.Values{
		"unitGroup":   {"metric"},
		"include":     {"days"},
		"contentType": {"json"},
		"key":         {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Weather{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var timeline response
	if err := json.NewDecoder(resp.Body).Decode(&timeline); err != nil {
		return domain.Weather{}, fmt.Errorf("decode response: %w", err)
	}
	if len(timeline.Days) == 0 {
		return domain.Weather{}, fmt.Errorf("weather API returned no days for %s", day.Format(domain.DateLayout))
	}

	d := timeline.Days[0]
	c.logger.Debug("weather fetched", "coordinates", coord, "date", d.Datetime, "conditions", d.Conditions)
	return domain.Weather{
		Conditions:  d.Conditions,
		Description: d.Description,
		TempMax:     d.TempMax,
		TempMin:     d.TempMin,
		Temp:        d.Temp,
		FeelsLike:   d.FeelsLike,
		Humidity:    d.Humidity,
		Precip:      d.Precip,
		SnowDepth:   d.SnowDepth,
		WindSpeed:   d.WindSpeed,
		CloudCover:  d.CloudCover,
	}, nil
}

// Timeline API response types.

type response struct {
	Days []day `json:"days"`
}

type day struct {
	Datetime    string  `json:"datetime"`
	TempMax     float64 `json:"tempmax"`
	TempMin     float64 `json:"tempmin"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feelslike"`
	Humidity    float64 `json:"humidity"`
	Precip      float64 `json:"precip"`
	SnowDepth   float64 `json:"snowdepth"`
	WindSpeed   float64 `json:"windspeed"`
	CloudCover  float64 `json:"cloudcover"`
	Conditions  string  `json:"conditions"`
	Description string  `json:"description"`
}
