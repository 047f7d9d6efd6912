package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// SessionTransformer implements Transformer using the domain session builder
// with optional weather enrichment.
type SessionTransformer struct {
	zones   domain.TimezoneResolver
	weather domain.WeatherProvider
	logger  *slog.Logger
}

// NewTransformer creates a SessionTransformer. Pass a nil weather provider to
// disable weather enrichment.
func NewTransformer(zones domain.TimezoneResolver, weather domain.WeatherProvider, logger *slog.Logger) *SessionTransformer {
	return &SessionTransformer{
		zones:   zones,
		weather: weather,
		logger:  logger,
	}
}

func (t *SessionTransformer) Transform(ctx context.Context, raw domain.RawSessionLog) (*domain.Session, error) {
	s, err := domain.BuildSessionFrom(raw, t.zones)
	if err != nil {
		return nil, err
	}
	domain.EnrichWithWeather(ctx, s, t.weather, t.logger)
	return s, nil
}
