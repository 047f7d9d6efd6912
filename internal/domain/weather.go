package domain

import (
	"context"
	"log/slog"
	"time"
)

// Weather is the daily weather observed at a session's location.
type Weather struct {
	Conditions  string  `json:"conditions,omitempty"`
	Description string  `json:"description,omitempty"`
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	Precip      float64 `json:"precip"`
	SnowDepth   float64 `json:"snow_depth"`
	WindSpeed   float64 `json:"wind_speed"`
	CloudCover  float64 `json:"cloud_cover"`
}

// WeatherProvider looks up historical daily weather.
type WeatherProvider interface {
	DailyWeather(ctx context.Context, lat, lon float64, day time.Time) (Weather, error)
}

// Weather source values recorded on a session.
const (
	WeatherSourceProvider = "provider"
	WeatherSourceFailed   = "failed"
)

// EnrichWithWeather attaches the day's weather at the session location. A nil
// provider leaves the session untouched; a failed lookup is logged and
// recorded in WeatherSource without failing the session.
func EnrichWithWeather(ctx context.Context, s *Session, provider WeatherProvider, logger *slog.Logger) {
	if provider == nil {
		return
	}

	w, err := provider.DailyWeather(ctx, s.Location.Lat, s.Location.Lon, s.Date)
	if err != nil {
		logger.Warn("weather lookup failed",
			"source", s.Source,
			"location", s.Location.Name,
			"date", s.Date.Format(DateLayout),
			"error", err,
		)
		s.WeatherSource = WeatherSourceFailed
		return
	}
	s.Weather = &w
	s.WeatherSource = WeatherSourceProvider
}
