package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climbr-etl/internal/config"
	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// Writer publishes document streams to a Kafka topic, one message per
// document, keyed by index and ID so a compacted topic keeps the latest run.
// It implements pipeline.StreamLoader.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Every
// message of this process carries the same run_id header.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchSize:              cfg.BatchSize,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, runID: uuid.NewString(), logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// RunID returns the run identifier stamped on every message.
func (w *Writer) RunID() string { return w.runID }

// LoadStream serializes and publishes a whole stream in a single
// WriteMessages call; the producer splits it into batches.
func (w *Writer) LoadStream(ctx context.Context, stream domain.Stream) error {
	if len(stream.Documents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(stream.Documents))
	for i, doc := range stream.Documents {
		msg, err := serializeToMessage(doc, w.runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %s: %w", stream.Index, err)
	}
	w.logger.Debug("stream published", "index", stream.Index, "messages", len(msgs), "run_id", w.runID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a document into a Kafka message.
func serializeToMessage(doc domain.Document, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(doc.Body)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s document %d: %w", doc.Index, doc.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(doc.Index + "/" + strconv.Itoa(doc.ID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "index", Value: []byte(doc.Index)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
