package main

import (
	"log/slog"

	"github.com/couchcryptid/climbr-etl/internal/adapter/bulkfile"
	"github.com/couchcryptid/climbr-etl/internal/adapter/elasticsearch"
	kafkaadapter "github.com/couchcryptid/climbr-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climbr-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/climbr-etl/internal/adapter/weather"
	"github.com/couchcryptid/climbr-etl/internal/config"
	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
	"github.com/couchcryptid/climbr-etl/internal/pipeline"
)

// openSinks builds a loader per configured sink, in CLIMBR_SINKS order. The
// returned func closes the loaders that hold connections.
func openSinks(cfg *config.Config, logger *slog.Logger) ([]pipeline.StreamLoader, func(), error) {
	var (
		loaders []pipeline.StreamLoader
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Error("sink close error", "error", err)
			}
		}
	}

	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkFile:
			loaders = append(loaders, bulkfile.NewWriter(cfg.OutputDir, logger))
		case config.SinkElasticsearch:
			loaders = append(loaders, elasticsearch.NewClient(cfg.ElasticsearchURL, cfg.ElasticsearchTimeout, cfg.BatchSize, logger))
		case config.SinkKafka:
			w := kafkaadapter.NewWriter(cfg, logger)
			loaders = append(loaders, w)
			closers = append(closers, w.Close)
			logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "run_id", w.RunID())
		case config.SinkSQLite:
			store, err := sqlite.Open(cfg.SQLitePath, logger)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			loaders = append(loaders, store)
			closers = append(closers, store.Close)
		}
	}
	return loaders, closeAll, nil
}

// newWeatherProvider returns the cached weather client, or nil when weather
// enrichment is disabled (feature-flagged via WEATHER_ENABLED / WEATHER_API_KEY).
func newWeatherProvider(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.WeatherProvider {
	if !cfg.WeatherEnabled {
		metrics.WeatherEnabled.Set(0)
		logger.Info("weather enrichment disabled")
		return nil
	}
	metrics.WeatherEnabled.Set(1)
	client := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
	logger.Info("weather enrichment enabled", "cache_size", cfg.WeatherCacheSize, "timeout", cfg.WeatherTimeout)
	return weather.NewCachedProvider(client, cfg.WeatherCacheSize, metrics)
}
