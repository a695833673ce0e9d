package hub

import (
	"context"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
)

// Conn is one live client channel as the hub sees it.
//
// Send must not block: implementations enqueue data and return an error
// when the queue is full or the connection is gone.
type Conn interface {
	ID() string
	Send(data []byte) error
	IsOpen() bool
	Close() error
}

// AlertPublisher forwards alert events to external collaborators (dispatch,
// audit logs). Failures never affect websocket delivery.
type AlertPublisher interface {
	PublishSOS(ctx context.Context, alert models.SOSAlert) error
	PublishAnomaly(ctx context.Context, alert models.AnomalyAlert) error
	PublishSafetyAlert(ctx context.Context, alert models.SafetyAlert) error
}

// LocationMirror receives a write-behind copy of driver positions.
type LocationMirror interface {
	UpsertDriver(ctx context.Context, loc models.DriverLocation) error
	RemoveDriver(ctx context.Context, driverID int64) error
}

type noopPublisher struct{}

func (noopPublisher) PublishSOS(context.Context, models.SOSAlert) error             { return nil }
func (noopPublisher) PublishAnomaly(context.Context, models.AnomalyAlert) error     { return nil }
func (noopPublisher) PublishSafetyAlert(context.Context, models.SafetyAlert) error { return nil }

type noopMirror struct{}

func (noopMirror) UpsertDriver(context.Context, models.DriverLocation) error { return nil }
func (noopMirror) RemoveDriver(context.Context, int64) error                 { return nil }
