// Package kafka publishes annotation activity events for downstream
// consumers (usage analytics, audit trails).
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// AnnotationEvent is the wire record emitted after each annotate request.
type AnnotationEvent struct {
	RequestID    string    `json:"request_id"`
	InputText    string    `json:"input_text"`
	Domain       string    `json:"domain,omitempty"`
	MatchCount   int       `json:"match_count"`
	TopTermID    string    `json:"top_term_id,omitempty"`
	TopMatchType string    `json:"top_match_type,omitempty"`
	CacheHit     bool      `json:"cache_hit"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// Config holds the producer settings.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	Acks         string        `mapstructure:"acks"`
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes annotation events.
type Producer struct {
	writer WriterInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a producer over a real kafka writer.
func NewProducer(cfg Config, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka topic is required")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.MaxRetries + 1,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           requiredAcks,
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, cfg.Topic, logger), nil
}

// NewProducerWithWriter wires a custom writer.  Used by tests.
func NewProducerWithWriter(writer WriterInterface, topic string, logger logging.Logger) *Producer {
	return newProducer(writer, topic, logger)
}

func newProducer(writer WriterInterface, topic string, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger.Named("kafka"),
	}
}

// Publish writes one annotation event, keyed by input text so events for the
// same term land on the same partition.
func (p *Producer) Publish(ctx context.Context, event AnnotationEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if event.InputText == "" {
		return errors.New(errors.ErrCodeValidation, "event input_text is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "event encoding failed")
	}

	msg := kafka.Message{
		Key:   []byte(event.InputText),
		Value: value,
		Time:  event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeInternal, "event publish failed")
	}

	p.sent.Add(1)
	p.logger.Debug("annotation event published",
		logging.String("input_text", event.InputText),
		logging.Int("match_count", event.MatchCount),
	)
	return nil
}

// PublishAsync publishes without blocking the request path; failures are
// logged and counted, never surfaced to the caller.
func (p *Producer) PublishAsync(event AnnotationEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			p.logger.Warn("async event publish failed",
				logging.String("input_text", event.InputText),
				logging.Err(err),
			)
		}
	}()
}

// Stats returns the sent and failed counters.
func (p *Producer) Stats() (sent, failed int64) {
	return p.sent.Load(), p.failed.Load()
}

// Close makes further publishes fail fast and closes the writer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}
