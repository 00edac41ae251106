package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultGeocoderBaseURL is the public Nominatim search endpoint.
const DefaultGeocoderBaseURL = "https://nominatim.openstreetmap.org/search"

// DefaultGeocoderUserAgent identifies the service to the geocoding provider.
const DefaultGeocoderUserAgent = "geocoding-service/1.0"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	LogFile          string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Geocoding service configuration.
	GeocoderBaseURL        string
	GeocoderUserAgent      string
	GeocoderRequestTimeout time.Duration
	GeocoderCacheSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GEOCODER_REQUEST_TIMEOUT", "10s"))
	if err != nil || requestTimeout < 0 {
		return nil, errors.New("invalid GEOCODER_REQUEST_TIMEOUT")
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "geocode-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geocode-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "geocoding-service"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:            os.Getenv("LOG_FILE"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GeocoderBaseURL:        sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", DefaultGeocoderBaseURL),
		GeocoderUserAgent:      sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", DefaultGeocoderUserAgent),
		GeocoderRequestTimeout: requestTimeout,
		GeocoderCacheSize:      cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if err := validateBaseURL(cfg.GeocoderBaseURL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseCacheSize reads GEOCODER_CACHE_SIZE. Zero disables the cache.
func parseCacheSize() (int, error) {
	s := os.Getenv("GEOCODER_CACHE_SIZE")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid GEOCODER_CACHE_SIZE %q", s)
	}
	return n, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid GEOCODER_BASE_URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}
