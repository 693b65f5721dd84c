package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

const maxJoinWorkers = 64

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir        string
	OutputPath     string
	DatasetsFile   string
	GridResolution float64
	TimeScale      float64
	JoinWorkers    int

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether linked rows are also published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	resolution, err := parsePositiveFloat("GRID_RESOLUTION", domain.DefaultGridResolution)
	if err != nil {
		return nil, err
	}
	timeScale, err := parsePositiveFloat("TIME_SCALE", domain.DefaultTimeScale)
	if err != nil {
		return nil, err
	}
	workers, err := parseJoinWorkers()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if s := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); s != "" {
		brokers = sharedcfg.ParseBrokers(s)
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "./data"),
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "formulization_data_final.csv"),
		DatasetsFile:    sharedcfg.EnvOrDefault("DATASETS_FILE", ""),
		GridResolution:  resolution,
		TimeScale:       timeScale,
		JoinWorkers:     workers,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "linked-samples"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ""),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseJoinWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("JOIN_WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxJoinWorkers {
		return 0, fmt.Errorf("invalid JOIN_WORKERS: %q (must be 1..%d)", s, maxJoinWorkers)
	}
	return n, nil
}
