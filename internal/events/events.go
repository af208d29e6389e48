// Package events publishes user lifecycle events for other services.
package events

import (
	"context"
	"encoding/json"
	"time"

	"notes_system/internal/domain"

	"github.com/segmentio/kafka-go" // Kafka client
)

// Event types
const (
	UserCreated = "created"
	UserUpdated = "updated"
	UserDeleted = "deleted"
)

// Event describes a change to a user record. It never carries the password.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"id"`
	Username   string    `json:"username"`
	Roles      []string  `json:"roles"`
	Active     bool      `json:"active"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewUserEvent builds an event of type typ for user
func NewUserEvent(typ string, user *domain.User) Event {
	return Event{
		Type:       typ,
		UserID:     user.ID,
		Username:   user.Username,
		Roles:      user.Roles,
		Active:     user.Active,
		OccurredAt: time.Now().UTC(),
	}
}

// Key is the message key. It is the user id alone so every event of one
// user hashes to the same partition and keeps its order.
func (e Event) Key() string {
	return e.UserID
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events as JSON messages
type KafkaPublisher struct {
	w MessageWriter
}

// NewKafkaPublisher wraps w
func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
	})
}

// NewKafkaWriter returns a writer for topic on the given brokers
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // Events for one user land on one partition
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
}
