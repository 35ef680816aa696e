// Package kafka publishes detected storm windows to the sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/config"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces storm reports to a Kafka topic.
// It implements pipeline.ReportSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishReports serializes and publishes the cycle's storm reports in a
// single WriteMessages call. Report IDs are deterministic, so consumers
// can deduplicate re-detections of the same window across cycles.
func (w *Writer) PublishReports(ctx context.Context, reports []domain.StormReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StormReport into a Kafka message.
func serializeToMessage(report domain.StormReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize storm report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "criterion", Value: []byte(report.Criterion)},
			{Key: "detected_at", Value: []byte(report.DetectedAt.Format(time.RFC3339))},
		},
	}, nil
}
