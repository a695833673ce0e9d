package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type published struct {
	key string
	msg amqp.Publishing
}

func newTestProducer(err error) (*AlertProducer, *[]published) {
	var out []published
	p := &AlertProducer{
		publish: func(_ context.Context, key string, msg amqp.Publishing) error {
			out = append(out, published{key: key, msg: msg})
			return err
		},
		now: func() time.Time { return time.Unix(1700000000, 0) },
	}
	return p, &out
}

func TestAlertProducer_RoutingKeys(t *testing.T) {
	p, out := newTestProducer(nil)
	ctx := context.Background()

	require.NoError(t, p.PublishSOS(ctx, models.SOSAlert{SenderID: 3, IsSOS: true, Priority: models.SOSPriority}))
	require.NoError(t, p.PublishAnomaly(ctx, models.AnomalyAlert{DriverID: 4, Reason: "stop", RiskLevel: types.RiskHigh}))
	require.NoError(t, p.PublishSafetyAlert(ctx, models.SafetyAlert{Category: "Incident"}))

	require.Len(t, *out, 3)
	require.Equal(t, KeySOSRaised, (*out)[0].key)
	require.Equal(t, KeyAnomalyReported, (*out)[1].key)
	require.Equal(t, KeySafetyBroadcast, (*out)[2].key)

	first := (*out)[0].msg
	require.Equal(t, "application/json", first.ContentType)
	require.Equal(t, amqp.Persistent, first.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(first.Body, &body))
	require.Equal(t, float64(3), body["userId"])
	require.Equal(t, "CRITICAL", body["priority"])
}

func TestAlertProducer_PublishError(t *testing.T) {
	p, _ := newTestProducer(errors.New("channel closed"))

	err := p.PublishSOS(context.Background(), models.SOSAlert{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "AlertProducer.PublishSOS")
}

type fakeAck struct {
	acked, nacked, rejected bool
	requeue                 bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error {
	a.rejected, a.requeue = true, requeue
	return nil
}

func TestIncidentConsumer_HandleDelivery(t *testing.T) {
	c := &IncidentConsumer{l: logger.Discard()}
	ctx := context.Background()
	body := []byte(`{"category":"Robbery","location":"Kurmi Market","summary":"armed robbery reported","risk_level":"high"}`)

	t.Run("ack on success", func(t *testing.T) {
		ack := &fakeAck{}
		var got models.IncidentEvent
		c.handleDelivery(ctx, func(_ context.Context, in models.IncidentEvent) error {
			got = in
			return nil
		}, amqp.Delivery{Acknowledger: ack, Body: body})

		require.True(t, ack.acked)
		require.Equal(t, types.RiskHigh, got.RiskLevel)
		require.Equal(t, "Kurmi Market", got.SafetyAlert().Location)
	})

	t.Run("reject undecodable", func(t *testing.T) {
		ack := &fakeAck{}
		c.handleDelivery(ctx, func(context.Context, models.IncidentEvent) error {
			t.Fatal("handler must not run")
			return nil
		}, amqp.Delivery{Acknowledger: ack, Body: []byte("{")})

		require.True(t, ack.rejected)
		require.False(t, ack.requeue)
	})

	t.Run("requeue once on handler error", func(t *testing.T) {
		fail := func(context.Context, models.IncidentEvent) error { return errors.New("boom") }

		ack := &fakeAck{}
		c.handleDelivery(ctx, fail, amqp.Delivery{Acknowledger: ack, Body: body})
		require.True(t, ack.nacked)
		require.True(t, ack.requeue)

		ack = &fakeAck{}
		c.handleDelivery(ctx, fail, amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: true})
		require.True(t, ack.nacked)
		require.False(t, ack.requeue)
	})

	t.Run("drop permanent failures", func(t *testing.T) {
		ack := &fakeAck{}
		c.handleDelivery(ctx, func(context.Context, models.IncidentEvent) error {
			return fmt.Errorf("safety.HandleIncident: %w", types.ErrValidation)
		}, amqp.Delivery{Acknowledger: ack, Body: body})
		require.True(t, ack.nacked)
		require.False(t, ack.requeue)
	})
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, sleepCtx(ctx, time.Hour))
	require.True(t, sleepCtx(context.Background(), time.Millisecond))
}
