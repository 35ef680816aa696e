package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "geomagnetic-storm-windows", cfg.KafkaSinkTopic)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.WDCBaseURL)
	assert.Equal(t, 30*time.Second, cfg.WDCTimeout)
	assert.Equal(t, 24, cfg.WDCCacheSize)
	assert.Equal(t, time.Hour, cfg.PollInterval)
	assert.Equal(t, 3, cfg.LookbackMonths)
	assert.Equal(t, domain.Criterion{Kind: domain.KindAbove, Threshold: 50}, cfg.Criterion)
	assert.Equal(t, 3.0, cfg.MergeGapDays)
	assert.True(t, cfg.AbsoluteValue)
	assert.Empty(t, cfg.DataDir)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-windows")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WDC_BASE_URL", "http://localhost:8081")
	t.Setenv("WDC_TIMEOUT", "5s")
	t.Setenv("WDC_CACHE_SIZE", "6")
	t.Setenv("POLL_INTERVAL", "15m")
	t.Setenv("LOOKBACK_MONTHS", "6")
	t.Setenv("DST_THRESHOLD_NT", "100")
	t.Setenv("MERGE_GAP_DAYS", "1.5")
	t.Setenv("ABS_VALUE", "false")
	t.Setenv("DATA_DIR", "/tmp/dst")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-windows", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081", cfg.WDCBaseURL)
	assert.Equal(t, 5*time.Second, cfg.WDCTimeout)
	assert.Equal(t, 6, cfg.WDCCacheSize)
	assert.Equal(t, 15*time.Minute, cfg.PollInterval)
	assert.Equal(t, 6, cfg.LookbackMonths)
	assert.Equal(t, domain.Criterion{Kind: domain.KindAbove, Threshold: 100}, cfg.Criterion)
	assert.Equal(t, 1.5, cfg.MergeGapDays)
	assert.False(t, cfg.AbsoluteValue)
	assert.Equal(t, "/tmp/dst", cfg.DataDir)
}

func TestLoad_BetweenCriterion(t *testing.T) {
	t.Setenv("DST_THRESHOLD_MODE", "between")
	t.Setenv("DST_LOWER_NT", "50")
	t.Setenv("DST_UPPER_NT", "150")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Criterion{Kind: domain.KindBetween, Lower: 50, Upper: 150}, cfg.Criterion)
}

func TestLoad_BetweenCriterionInvertedBounds(t *testing.T) {
	t.Setenv("DST_THRESHOLD_MODE", "between")
	t.Setenv("DST_LOWER_NT", "200")
	t.Setenv("DST_UPPER_NT", "150")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DST_LOWER_NT")
}

func TestLoad_InvalidThresholdMode(t *testing.T) {
	t.Setenv("DST_THRESHOLD_MODE", "sideways")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DST_THRESHOLD_MODE")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-1h")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_InvalidLookbackMonths(t *testing.T) {
	t.Setenv("LOOKBACK_MONTHS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOKBACK_MONTHS")
}

func TestLoad_NegativeMergeGap(t *testing.T) {
	t.Setenv("MERGE_GAP_DAYS", "-2")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MERGE_GAP_DAYS")
}

func TestLoad_ZeroMergeGapDisablesMerging(t *testing.T) {
	t.Setenv("MERGE_GAP_DAYS", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.MergeGapDays)
}

func TestLoad_KafkaDisabledSkipsBrokerValidation(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
