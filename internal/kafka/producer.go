package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers    []string
	writer     messageWriter
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
}

type ProducerOption func(*Producer)

func WithLogger(logger *slog.Logger) ProducerOption {
	return func(p *Producer) {
		p.logger = logger
	}
}

// WithRetries makes Publish try up to n times, sleeping attempt*backoff between tries.
func WithRetries(n int, backoff time.Duration) ProducerOption {
	return func(p *Producer) {
		if n > 0 {
			p.maxRetries = n
		}
		p.backoff = backoff
	}
}

func NewProducer(brokers []string, opts ...ProducerOption) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(brokers, writer, opts...)
}

func newProducer(brokers []string, writer messageWriter, opts ...ProducerOption) *Producer {
	p := &Producer{
		brokers:    brokers,
		writer:     writer,
		logger:     slog.Default(),
		maxRetries: 1,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish JSON-encodes payload and writes it to topic under key. Messages with
// the same key land on the same partition, so events for one flight stay ordered.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if lastErr = p.writer.WriteMessages(ctx, message); lastErr == nil {
			p.logger.DebugContext(ctx, "published to kafka", "topic", topic, "key", key)
			return nil
		}
		p.logger.WarnContext(ctx, "kafka publish attempt failed", "topic", topic, "key", key, "attempt", attempt, "error", lastErr)

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("failed to write message to Kafka: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * p.backoff):
			}
		}
	}
	return fmt.Errorf("failed to write message to Kafka after %d attempts: %w", p.maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.InfoContext(ctx, "connected to kafka", "broker", p.brokers[0], "partitions", len(partitions))
	return nil
}
