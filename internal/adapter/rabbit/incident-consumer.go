package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
	"github.com/Temutjin2k/kekelink/pkg/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
)

const retryDelay = 2 * time.Second

// IncidentHandler reacts to one incident. A returned error requeues the
// delivery once unless the error is permanent.
type IncidentHandler func(ctx context.Context, incident models.IncidentEvent) error

type IncidentConsumer struct {
	client *rabbit.RabbitMQ
	l      logger.Logger
}

func NewIncidentConsumer(client *rabbit.RabbitMQ, l logger.Logger) *IncidentConsumer {
	return &IncidentConsumer{client: client, l: l}
}

// ConsumeIncidents listens on the incident queue until ctx ends, reconnecting
// whenever the channel drops.
func (c *IncidentConsumer) ConsumeIncidents(ctx context.Context, fn IncidentHandler) error {
	const op = "IncidentConsumer.ConsumeIncidents"
	ctx = wrap.WithAction(ctx, "consume_incidents")

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "incident consumer stopped by context")
			return nil
		}

		msgs, err := c.subscribe(ctx)
		if err != nil {
			c.l.Error(ctx, "subscribe failed", err, "op", op)
			if !sleepCtx(ctx, retryDelay) {
				return nil
			}
			continue
		}

		c.l.Info(ctx, "start consuming incidents", "queue", IncidentQueue)

		if done := c.drain(ctx, fn, msgs); done {
			c.l.Info(ctx, "incident consumer shutting down")
			return nil
		}
		c.l.Warn(ctx, "delivery channel closed, resubscribing", "op", op)
		if !sleepCtx(ctx, retryDelay) {
			return nil
		}
	}
}

func (c *IncidentConsumer) subscribe(ctx context.Context) (<-chan amqp.Delivery, error) {
	if err := c.client.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	if err := c.client.DeclareTopology(SafetyExchange, IncidentQueue, IncidentBinding); err != nil {
		return nil, err
	}
	ch, err := c.client.Channel()
	if err != nil {
		return nil, err
	}
	return ch.Consume(IncidentQueue, "", false, false, false, false, nil)
}

// drain processes deliveries until ctx ends (true) or msgs closes (false).
func (c *IncidentConsumer) drain(ctx context.Context, fn IncidentHandler, msgs <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			c.handleDelivery(ctx, fn, msg)
		}
	}
}

func (c *IncidentConsumer) handleDelivery(ctx context.Context, fn IncidentHandler, msg amqp.Delivery) {
	const op = "IncidentConsumer.handleDelivery"

	var incident models.IncidentEvent
	if err := json.Unmarshal(msg.Body, &incident); err != nil {
		err = fmt.Errorf("%s: decode: %w", op, err)
		metrics.RecordRabbitMQConsume(IncidentQueue, err)
		c.l.Error(ctx, "decode failed", err, "routing_key", msg.RoutingKey)
		_ = msg.Reject(false)
		return
	}

	if err := fn(ctx, incident); err != nil {
		metrics.RecordRabbitMQConsume(IncidentQueue, err)
		c.l.Error(ctx, "handler failed", err, "op", op, "redelivered", msg.Redelivered)
		// one retry, then drop
		_ = msg.Nack(false, !msg.Redelivered && !isPermanentError(err))
		return
	}

	metrics.RecordRabbitMQConsume(IncidentQueue, nil)
	if err := msg.Ack(false); err != nil {
		c.l.Warn(ctx, "ack failed", "error", err, "op", op)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
