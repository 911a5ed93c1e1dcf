package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Astemirdum/bookshelf/pkg/circuit_breaker"
	"github.com/Astemirdum/bookshelf/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type Event struct {
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = kafka.ChangesTopic
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		cb: circuit_breaker.New(circuit_breaker.Config{
			Window:       10,
			Cooldown:     10 * time.Second,
			FailureRatio: 0.5,
			Recovery:     2,
		}),
		log: log.Named("events"),
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%s:%d", e.Entity, e.ID)),
		Value: sarama.ByteEncoder(b),
	}
	return p.cb.Call(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return errors.Wrap(err, "producer.SendMessage")
		}
		p.log.Debug("published",
			zap.String("entity", e.Entity),
			zap.String("action", string(e.Action)),
			zap.Int64("id", e.ID),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
		return nil
	})
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
