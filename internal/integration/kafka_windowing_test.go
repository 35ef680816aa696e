//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dst-index-etl/internal/config"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
	"github.com/couchcryptid/dst-index-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-storm-windows"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-broker Kafka container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// stormSeries builds an hourly April 2024 series with a single -100 nT
// excursion on April 10 hours 6..20.
func stormSeries() []domain.IntensitySample {
	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	series := make([]domain.IntensitySample, 0, 30*24)
	for day := 1; day <= 30; day++ {
		for hour := 0; hour < 24; hour++ {
			value := -10.0
			if day == 10 && hour >= 6 && hour <= 20 {
				value = -100
			}
			series = append(series, domain.IntensitySample{
				Timestamp: start.AddDate(0, 0, day-1).Add(time.Duration(hour) * time.Hour),
				NanoTesla: value,
			})
		}
	}
	return series
}

type staticSource struct {
	series []domain.IntensitySample
}

func (s *staticSource) FetchSeries(_ context.Context, _ []domain.Month) ([]domain.IntensitySample, error) {
	return s.series, nil
}

// TestWriterPublishesStormReports verifies the kafka.Writer round-trips a
// detected storm window through a real broker, headers included.
func TestWriterPublishesStormReports(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	detector, err := pipeline.NewDetector(domain.Criterion{Kind: domain.KindAbove, Threshold: 50}, 2, true)
	require.NoError(t, err)
	reports, err := detector.Detect(stormSeries())
	require.NoError(t, err)
	require.Len(t, reports, 1)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishReports(ctx, reports))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	assert.Equal(t, reports[0].ID, string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "above 50 nT", headers["criterion"])
	_, err = time.Parse(time.RFC3339, headers["detected_at"])
	assert.NoError(t, err, "detected_at should be valid RFC3339")

	var got domain.StormReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, reports[0].Start, got.Start)
	assert.Equal(t, reports[0].End, got.End)
	assert.Equal(t, 15.0, got.DurationHours)
	assert.Equal(t, 100.0, got.PeakNanoTesla)
}

// TestPipelinePublishesEndToEnd wires the pipeline with a static series
// source and a real Kafka sink and verifies one full cycle lands on the
// topic.
func TestPipelinePublishesEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	detector, err := pipeline.NewDetector(domain.Criterion{Kind: domain.KindAbove, Threshold: 50}, 2, true)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&staticSource{series: stormSeries()}, detector, writer, nil, discardLogger(), metrics, pipeline.Options{
		PollInterval:   time.Hour,
		LookbackMonths: 1,
		Clock:          clockwork.NewFakeClockAt(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
	})

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 60*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)

	var got domain.StormReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, time.Date(2024, time.April, 10, 6, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, time.Date(2024, time.April, 10, 21, 0, 0, 0, time.UTC), got.End)

	latest := p.LatestReports()
	require.Len(t, latest, 1)
	assert.Equal(t, got.ID, latest[0].ID)
}
