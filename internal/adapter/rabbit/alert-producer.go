package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
	"github.com/Temutjin2k/kekelink/pkg/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publishFunc func(ctx context.Context, key string, msg amqp.Publishing) error

// AlertProducer publishes hub alerts to the safety exchange.
type AlertProducer struct {
	publish publishFunc
	now     func() time.Time
}

func NewAlertProducer(client *rabbit.RabbitMQ) *AlertProducer {
	return &AlertProducer{
		publish: func(ctx context.Context, key string, msg amqp.Publishing) error {
			ch, err := client.Channel()
			if err != nil {
				return err
			}
			return ch.PublishWithContext(
				ctx,
				SafetyExchange, // exchange
				key,            // routing key
				false,          // mandatory
				false,          // immediate
				msg,
			)
		},
		now: time.Now,
	}
}

func (p *AlertProducer) PublishSOS(ctx context.Context, alert models.SOSAlert) error {
	return p.send(ctx, "AlertProducer.PublishSOS", KeySOSRaised, alert)
}

func (p *AlertProducer) PublishAnomaly(ctx context.Context, alert models.AnomalyAlert) error {
	return p.send(ctx, "AlertProducer.PublishAnomaly", KeyAnomalyReported, alert)
}

func (p *AlertProducer) PublishSafetyAlert(ctx context.Context, alert models.SafetyAlert) error {
	return p.send(ctx, "AlertProducer.PublishSafetyAlert", KeySafetyBroadcast, alert)
}

func (p *AlertProducer) send(ctx context.Context, op, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, "marshal_alert"), fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	err = p.publish(ctx, key, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    p.now(),
	})
	metrics.RecordRabbitMQPublish(key, err)
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, "publish_message"), fmt.Errorf("%s: failed to publish: %w", op, err))
	}
	return nil
}
