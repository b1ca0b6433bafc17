package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"web-calendar/internal/config"
	"web-calendar/internal/logger"
	"web-calendar/internal/models"
)

const (
	NotificationEventCreated = "event.created"
	NotificationEventDeleted = "event.deleted"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventPayload struct {
	ID   int64       `json:"id"`
	Name string      `json:"event"`
	Date models.Date `json:"date"`
}

// Notification is the envelope published for every change to the calendar.
type Notification struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	EventID    int64         `json:"event_id"`
	Event      *EventPayload `json:"event,omitempty"`
}

func NewNotification(kind string, eventID int64, event *models.Event) Notification {
	n := Notification{
		ID:         uuid.NewString(),
		Type:       kind,
		OccurredAt: time.Now().UTC(),
		EventID:    eventID,
	}
	if event != nil {
		n.Event = &EventPayload{ID: event.ID, Name: event.Name, Date: event.Date}
	}
	return n
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		// WriteMessages runs inside the request; do not wait on kafka-go's 1s default batch window.
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

// EventCreated streams the creation of an event to Kafka
func (p *Producer) EventCreated(ctx context.Context, event models.Event) error {
	return p.publish(ctx, p.Topics.EventCreated, NewNotification(NotificationEventCreated, event.ID, &event))
}

// EventDeleted streams the deletion of an event to Kafka
func (p *Producer) EventDeleted(ctx context.Context, eventID int64) error {
	return p.publish(ctx, p.Topics.EventDeleted, NewNotification(NotificationEventDeleted, eventID, nil))
}

func (p *Producer) publish(ctx context.Context, topic string, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", n.Type, err)
	}

	// Keyed by event id so every change to one event lands on the same partition.
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(n.EventID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "notification-id", Value: []byte(n.ID)},
			{Key: "notification-type", Value: []byte(n.Type)},
		},
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", n.Type, topic, err)
	}

	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s for event %d", n.Type, n.EventID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
