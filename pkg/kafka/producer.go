// Package kafka publishes merge outcome events.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/fern/pkg/metrics"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes messages to Kafka
type Producer struct {
	writer messageWriter
	logger ectologger.Logger
	config ProducerConfig
}

// NewProducer creates a new Kafka producer
func NewProducer(config ProducerConfig, logger ectologger.Logger) (*Producer, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("a topic is required")
	}

	var compression kafka.Compression
	switch config.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	default:
		compression = 0 // No compression
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		MaxAttempts:            config.MaxAttempts,
		WriteTimeout:           config.WriteTimeout,
		Async:                  config.Async,
		Compression:            compression,
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, config, logger), nil
}

func newProducer(writer messageWriter, config ProducerConfig, logger ectologger.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		config: config,
	}
}

// PublishMergeEvent publishes a merge outcome. The event type is the partition key.
func (p *Producer) PublishMergeEvent(ctx context.Context, event *MergeEvent) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	headers := MessageHeaders{
		EventType: event.Type,
		RequestID: event.RequestID,
	}
	if event.TraceID != "" {
		headers.TraceParent = fmt.Sprintf("00-%s-%s-01", event.TraceID, event.SpanID)
	}

	kafkaHeaders := make([]kafka.Header, 0)
	for _, h := range headers.ToKafkaHeaders() {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: h.Key, Value: h.Value})
	}

	kafkaMsg := kafka.Message{
		Key:     []byte(event.Type),
		Value:   data,
		Headers: kafkaHeaders,
		Time:    event.Timestamp,
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		metrics.RecordKafkaPublish(p.config.Topic, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to publish message: %w", err)
	}
	metrics.RecordKafkaPublish(p.config.Topic, "success", time.Since(start).Seconds())

	p.logger.WithContext(ctx).Debugf("Published %s event %s to %s", event.Type, event.EventID, p.config.Topic)
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
