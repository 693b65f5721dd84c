package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "formulization_data_final.csv", cfg.OutputPath)
	assert.Empty(t, cfg.DatasetsFile)
	assert.InDelta(t, 0.01, cfg.GridResolution, 1e-12)
	assert.InDelta(t, 0.01, cfg.TimeScale, 1e-12)
	assert.Equal(t, 4, cfg.JoinWorkers)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "linked-samples", cfg.KafkaSinkTopic)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("OUTPUT_PATH", "/srv/out/linked.csv")
	t.Setenv("DATASETS_FILE", "/srv/datasets.yaml")
	t.Setenv("GRID_RESOLUTION", "0.05")
	t.Setenv("TIME_SCALE", "0.1")
	t.Setenv("JOIN_WORKERS", "8")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "/srv/out/linked.csv", cfg.OutputPath)
	assert.Equal(t, "/srv/datasets.yaml", cfg.DatasetsFile)
	assert.InDelta(t, 0.05, cfg.GridResolution, 1e-12)
	assert.InDelta(t, 0.1, cfg.TimeScale, 1e-12)
	assert.Equal(t, 8, cfg.JoinWorkers)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidGridResolution(t *testing.T) {
	for _, v := range []string{"abc", "0", "-0.01"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("GRID_RESOLUTION", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "GRID_RESOLUTION")
		})
	}
}

func TestLoad_InvalidTimeScale(t *testing.T) {
	t.Setenv("TIME_SCALE", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIME_SCALE")
}

func TestLoad_InvalidJoinWorkers(t *testing.T) {
	for _, v := range []string{"0", "65", "many"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("JOIN_WORKERS", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "JOIN_WORKERS")
		})
	}
}
