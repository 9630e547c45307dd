// Package notify publishes refresh results for downstream reporting.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

const (
	TypeCommitteeRefreshed = "committee.refreshed"
	TypeRunCompleted       = "run.completed"
)

// CommitteeRefreshed summarizes one committee's pipeline.
type CommitteeRefreshed struct {
	Type           string    `json:"type"`
	RunID          string    `json:"run_id"`
	CommitteeID    string    `json:"committee_id"`
	IngestError    string    `json:"ingest_error,omitempty"`
	Stored         int       `json:"stored"`
	Future         int       `json:"future"`
	Failed         int       `json:"failed"`
	Videos         int       `json:"videos"`
	Tagged         int       `json:"tagged"`
	ExactTitle     int       `json:"exact_title"`
	ContainedTitle int       `json:"contained_title"`
	Unmatched      int       `json:"unmatched"`
	PresumedSaved  int       `json:"presumed_saved"`
	FinishedAt     time.Time `json:"finished_at"`
}

// RunCompleted summarizes a whole run.
type RunCompleted struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Committees int       `json:"committees"`
	Events     int       `json:"events"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier receives refresh results.
type Notifier interface {
	CommitteeRefreshed(ctx context.Context, msg CommitteeRefreshed) error
	RunCompleted(ctx context.Context, msg RunCompleted) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) CommitteeRefreshed(context.Context, CommitteeRefreshed) error { return nil }
func (Nop) RunCompleted(context.Context, RunCompleted) error             { return nil }
func (Nop) Close() error                                                 { return nil }

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// Kafka publishes JSON notifications keyed by committee or run id.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSaramaConfig returns the producer settings used by NewKafka.
func NewSaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = 3
	return saramaConfig
}

// NewKafka connects a synchronous producer.
func NewKafka(config ProducerConfig) (*Kafka, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaWithProducer(producer, config.Topic), nil
}

// NewKafkaWithProducer wraps an existing producer.
func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) CommitteeRefreshed(_ context.Context, msg CommitteeRefreshed) error {
	msg.Type = TypeCommitteeRefreshed
	return k.send(msg.CommitteeID, msg)
}

func (k *Kafka) RunCompleted(_ context.Context, msg RunCompleted) error {
	msg.Type = TypeRunCompleted
	return k.send(msg.RunID, msg)
}

func (k *Kafka) send(key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
