package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fieldserve/fieldserve-be/shared/rabbitmq"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotifyMessage is published by the API when a job with a scheduled date is
// created or updated
type NotifyMessage struct {
	JobID string `json:"job_id"`
}

// Consumer drains notify messages from RabbitMQ and runs the on-demand
// notification flow for each. Messages are always resolved in-place: there
// is no requeue-based retry, the periodic dispatcher's re-scan of unset
// markers is the only retry mechanism.
type Consumer struct {
	rabbitClient *rabbitmq.Client
	notifier     *Notifier
	logger       *slog.Logger
	consumerTag  string
	prefetch     int
}

// NewConsumer creates a notify-message consumer
func NewConsumer(rabbitClient *rabbitmq.Client, notifier *Notifier, logger *slog.Logger, prefetch int) *Consumer {
	return &Consumer{
		rabbitClient: rabbitClient,
		notifier:     notifier,
		logger:       logger,
		consumerTag:  fmt.Sprintf("dispatcher-%s", uuid.New().String()[:8]),
		prefetch:     prefetch,
	}
}

// Run consumes messages until the context is canceled or the delivery
// channel closes
func (c *Consumer) Run(ctx context.Context) error {
	channel := c.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}

	if err := channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.rabbitClient.Consume(c.consumerTag)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Notify consumer started",
		slog.String("consumer_tag", c.consumerTag),
		slog.Int("prefetch", c.prefetch),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Notify consumer stopped - context canceled")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed")
				return fmt.Errorf("delivery channel closed")
			}

			c.handleDelivery(ctx, delivery)
		}
	}
}

// handleDelivery processes one message. Malformed messages are NACKed
// without requeue; everything else is ACKed regardless of outcome, since
// the periodic dispatcher covers jobs whose webhook delivery failed.
func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var msg NotifyMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.logger.Error("Failed to parse notify message",
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to NACK malformed message",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	if _, err := uuid.Parse(msg.JobID); err != nil {
		c.logger.Error("Invalid job_id in notify message",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to NACK message with invalid job_id",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	outcome, err := c.notifier.NotifyJob(ctx, msg.JobID)
	switch {
	case errors.Is(err, ErrJobNotFound):
		c.logger.Warn("Notify message references unknown job",
			slog.String("job_id", msg.JobID),
		)
	case err != nil:
		c.logger.Error("On-demand notification failed",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
	default:
		c.logger.Info("Notify message processed",
			slog.String("job_id", msg.JobID),
			slog.String("outcome", outcome.Status),
		)
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("Failed to ACK notify message",
			slog.String("job_id", msg.JobID),
			slog.String("error", ackErr.Error()),
		)
	}
}
