package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sink names accepted in CLIMBR_SINKS.
const (
	SinkFile          = "file"
	SinkElasticsearch = "elasticsearch"
	SinkKafka         = "kafka"
	SinkSQLite        = "sqlite"
)

var knownSinks = []string{SinkFile, SinkElasticsearch, SinkKafka, SinkSQLite}

// Config holds all tool settings, populated from environment variables.
type Config struct {
	InputDir    string
	OutputDir   string
	Sinks       []string
	ProfilePath string
	LogLevel    string
	LogFormat   string
	BatchSize   int

	// Sink loads are retried with exponential backoff from RetryBackoff.
	LoadAttempts int
	RetryBackoff time.Duration

	ElasticsearchURL     string
	ElasticsearchTimeout time.Duration

	KafkaBrokers   []string
	KafkaSinkTopic string

	SQLitePath string

	// Weather enrichment configuration.
	WeatherAPIKey    string
	WeatherEnabled   bool
	WeatherTimeout   time.Duration
	WeatherCacheSize int

	// MetricsTextfile, when set, receives a Prometheus text dump after each run.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	esTimeout, err := parsePositiveDuration("ES_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	retryBackoff, err := parsePositiveDuration("RETRY_BACKOFF", "200ms")
	if err != nil {
		return nil, err
	}
	loadAttempts, err := parseLoadAttempts()
	if err != nil {
		return nil, err
	}

	weatherKey := os.Getenv("WEATHER_API_KEY")
	weatherEnabled := weatherKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		InputDir:    sharedcfg.EnvOrDefault("CLIMBR_INPUT_DIR", "data/input"),
		OutputDir:   sharedcfg.EnvOrDefault("CLIMBR_OUTPUT_DIR", "data/elasticsearch/bulk_data"),
		Sinks:       parseList(sharedcfg.EnvOrDefault("CLIMBR_SINKS", SinkFile)),
		ProfilePath: os.Getenv("CLIMBR_PROFILE"),
		LogLevel:    sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		BatchSize:   batchSize,

		LoadAttempts: loadAttempts,
		RetryBackoff: retryBackoff,

		ElasticsearchURL:     strings.TrimRight(sharedcfg.EnvOrDefault("ES_URL", "http://localhost:9200"), "/"),
		ElasticsearchTimeout: esTimeout,

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climbing-documents"),

		SQLitePath: sharedcfg.EnvOrDefault("SQLITE_PATH", "data/climbr.db"),

		WeatherAPIKey:    weatherKey,
		WeatherEnabled:   weatherEnabled,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheSize: parseWeatherCacheSize(),

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.Sinks, name)
}

func (c *Config) validate() error {
	if c.InputDir == "" {
		return errors.New("CLIMBR_INPUT_DIR is required")
	}
	if len(c.Sinks) == 0 {
		return errors.New("CLIMBR_SINKS must name at least one sink")
	}
	for _, s := range c.Sinks {
		if !slices.Contains(knownSinks, s) {
			return fmt.Errorf("invalid CLIMBR_SINKS entry %q, expecting one of %s", s, strings.Join(knownSinks, ", "))
		}
	}
	if c.HasSink(SinkKafka) {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka sink")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required for the kafka sink")
		}
	}
	if c.HasSink(SinkElasticsearch) && c.ElasticsearchURL == "" {
		return errors.New("ES_URL is required for the elasticsearch sink")
	}
	if c.WeatherEnabled && c.WeatherAPIKey == "" {
		return errors.New("WEATHER_ENABLED is true but WEATHER_API_KEY is not set")
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseLoadAttempts() (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault("LOAD_ATTEMPTS", "3"))
	if err != nil || n < 1 || n > 10 {
		return 0, errors.New("invalid LOAD_ATTEMPTS, expecting 1 to 10")
	}
	return n, nil
}

func parseWeatherCacheSize() int {
	if s := os.Getenv("WEATHER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
