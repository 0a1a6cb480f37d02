// Package eventbus publishes attendance events for downstream consumers
// (dashboards, badge printers) over Kafka.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/segmentio/kafka-go"
)

// CheckedIn is the payload of the attendance topic.
type CheckedIn struct {
	EventID        string    `json:"event_id"`
	RegistrationID string    `json:"registration_id"`
	CheckInTime    time.Time `json:"check_in_time"`
	CheckedInBy    string    `json:"checked_in_by"`
}

type Publisher interface {
	PublishCheckIn(ctx context.Context, in models.CheckIn) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
		now:   time.Now,
	}, nil
}

// PublishCheckIn writes one message keyed by event id, so check-ins of one
// event stay ordered within a partition.
func (p *KafkaPublisher) PublishCheckIn(ctx context.Context, in models.CheckIn) error {
	payload, err := json.Marshal(CheckedIn{
		EventID:        in.EventID,
		RegistrationID: in.RegistrationID,
		CheckInTime:    in.CheckInTime.UTC(),
		CheckedInBy:    in.CheckedInBy,
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(in.EventID),
		Value: payload,
		Time:  p.now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckIn(context.Context, models.CheckIn) error { return nil }
func (NopPublisher) Close() error                                           { return nil }
