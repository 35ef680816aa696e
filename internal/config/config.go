package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	KafkaEnabled    bool
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Bulletin source configuration.
	WDCBaseURL   string
	WDCTimeout   time.Duration
	WDCCacheSize int

	// Detection configuration.
	PollInterval   time.Duration
	LookbackMonths int
	Criterion      domain.Criterion
	MergeGapDays   float64
	AbsoluteValue  bool

	// DataDir receives the CSV archive; empty disables archiving.
	DataDir string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	wdcTimeout, err := parseDuration("WDC_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	lookback, err := parsePositiveInt("LOOKBACK_MONTHS", 3)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("WDC_CACHE_SIZE", 24)
	if err != nil {
		return nil, err
	}

	criterion, err := parseCriterion()
	if err != nil {
		return nil, err
	}

	mergeGapDays, err := parseFloat("MERGE_GAP_DAYS", 3)
	if err != nil {
		return nil, err
	}
	if mergeGapDays < 0 {
		return nil, errors.New("MERGE_GAP_DAYS must not be negative")
	}

	kafkaEnabled := true
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	absoluteValue := true
	if v := os.Getenv("ABS_VALUE"); v != "" {
		absoluteValue = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geomagnetic-storm-windows"),
		KafkaEnabled:    kafkaEnabled,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WDCBaseURL:   sharedcfg.EnvOrDefault("WDC_BASE_URL", ""),
		WDCTimeout:   wdcTimeout,
		WDCCacheSize: cacheSize,

		PollInterval:   pollInterval,
		LookbackMonths: lookback,
		Criterion:      criterion,
		MergeGapDays:   mergeGapDays,
		AbsoluteValue:  absoluteValue,

		DataDir: os.Getenv("DATA_DIR"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when Kafka is enabled")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

// parseCriterion assembles the detection criterion from DST_THRESHOLD_MODE
// and its value variables. The default matches the classic storm cutoff:
// absolute Dst above 50 nT.
func parseCriterion() (domain.Criterion, error) {
	mode := sharedcfg.EnvOrDefault("DST_THRESHOLD_MODE", string(domain.KindAbove))

	switch domain.CriterionKind(mode) {
	case domain.KindAbove, domain.KindBelow:
		threshold, err := parseFloat("DST_THRESHOLD_NT", 50)
		if err != nil {
			return domain.Criterion{}, err
		}
		return domain.Criterion{Kind: domain.CriterionKind(mode), Threshold: threshold}, nil

	case domain.KindBetween:
		lower, err := parseFloat("DST_LOWER_NT", 50)
		if err != nil {
			return domain.Criterion{}, err
		}
		upper, err := parseFloat("DST_UPPER_NT", 150)
		if err != nil {
			return domain.Criterion{}, err
		}
		if lower > upper {
			return domain.Criterion{}, errors.New("DST_LOWER_NT must not exceed DST_UPPER_NT")
		}
		return domain.Criterion{Kind: domain.KindBetween, Lower: lower, Upper: upper}, nil

	default:
		return domain.Criterion{}, fmt.Errorf("invalid DST_THRESHOLD_MODE %q", mode)
	}
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return f, nil
}
