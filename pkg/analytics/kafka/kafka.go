// Package kafka publishes analytics events as JSON messages to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/papercomputeco/leadline/pkg/analytics"
)

// DefaultTopic receives events when no topic is configured.
const DefaultTopic = "leadline.conversations"

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements analytics.Publisher on Kafka. Messages are keyed by
// thread ID so one conversation stays on one partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher returns a Publisher writing to topic on the comma separated
// brokers.
func NewPublisher(brokers, topic string) (*Publisher, error) {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes event as one message.
func (p *Publisher) Publish(ctx context.Context, event *analytics.Event) error {
	if event == nil {
		return analytics.ErrNilEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ThreadID),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("writing %s event: %w", event.EventType, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ analytics.Publisher = (*Publisher)(nil)
