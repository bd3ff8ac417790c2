// Package events publishes reading notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

const eventReadingRegistered = "reading.registered"

// ReadingRegisteredEvent is the message value published for every new reading.
type ReadingRegisteredEvent struct {
	TankID       int64              `json:"tank_id"`
	SerialNumber string             `json:"serial_number"`
	Reading      domain.TankReading `json:"reading"`
	RegisteredAt time.Time          `json:"registered_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes reading events to one topic, keyed by tank id so a tank's
// readings stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}}
}

func (p *Publisher) Name() string { return "kafka" }

func (p *Publisher) ReadingRegistered(ctx context.Context, tank *domain.Tank, reading *domain.TankReading) error {
	msg, err := serializeToMessage(ReadingRegisteredEvent{
		TankID:       reading.TankID,
		SerialNumber: tank.SerialNumber,
		Reading:      *reading,
		RegisteredAt: reading.CreatedAt,
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(event ReadingRegisteredEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(event.TankID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventReadingRegistered)},
			{Key: "registered_at", Value: []byte(event.RegisteredAt.Format(time.RFC3339))},
		},
	}, nil
}
