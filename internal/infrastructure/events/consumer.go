package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/zots0127/docdesk/pkg/metrics"
)

// ProjectChanged is published by the document service whenever a project,
// one of its files, or an orphan file changes
type ProjectChanged struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId,omitempty"`
	FileID    string    `json:"fileId,omitempty"`
	At        time.Time `json:"at"`
}

// Invalidator drops cached snapshot state
type Invalidator interface {
	Invalidate()
}

// MessageReader is the subset of *kafka.Reader the consumer needs
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReaderOptions configures the Kafka reader
type ReaderOptions struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader creates a consumer-group reader for the topic
func NewReader(opts ReaderOptions) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  opts.Brokers,
		GroupID:  opts.GroupID,
		Topic:    opts.Topic,
		MinBytes: 1,
		MaxBytes: 10 << 20,
	})
}

// Consumer invalidates the snapshot cache on project change events
type Consumer struct {
	reader      MessageReader
	topic       string
	invalidator Invalidator
	logger      logrus.FieldLogger
}

// NewConsumer creates an invalidation consumer
func NewConsumer(reader MessageReader, topic string, invalidator Invalidator, logger logrus.FieldLogger) *Consumer {
	return &Consumer{
		reader:      reader,
		topic:       topic,
		invalidator: invalidator,
		logger:      logger.WithFields(logrus.Fields{"component": "events", "topic": topic}),
	}
}

// Run consumes until ctx is cancelled, then closes the reader
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	c.logger.Info("Event consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Event consumer stopped")
				return nil
			}
			c.logger.Errorf("kafka fetch: %v", err)
			metrics.RecordEvent(c.topic, "fetch_error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		c.handle(msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warnf("kafka commit: %v", err)
		}
	}
}

func (c *Consumer) handle(msg kafka.Message) {
	var event ProjectChanged
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Unreadable payloads still mean something changed upstream.
		c.logger.Warnf("bad event json at offset %d: %v", msg.Offset, err)
		metrics.RecordEvent(c.topic, "malformed")
	} else {
		c.logger.WithFields(logrus.Fields{
			"type":       event.Type,
			"project_id": event.ProjectID,
			"file_id":    event.FileID,
		}).Debug("Project change received")
		metrics.RecordEvent(c.topic, "ok")
	}
	c.invalidator.Invalidate()
}
