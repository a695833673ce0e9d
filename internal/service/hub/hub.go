package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
)

const defaultSideEffectTimeout = 5 * time.Second

// Hub owns every piece of realtime state: open connections, their
// identities, and the driver/passenger location tables. A single mutex
// guards all of it, so a location upsert and the snapshot broadcast it
// triggers are observed atomically by every reader.
type Hub struct {
	mu sync.Mutex

	conns      map[string]Conn                    // connID -> conn
	identities map[string]models.Identity         // connID -> identity
	users      map[int64]string                   // userID -> owning connID
	drivers    map[int64]models.DriverLocation    // driverID -> location
	passengers map[int64]models.PassengerLocation // passengerID -> location

	publisher AlertPublisher
	mirror    LocationMirror

	sideEffectTimeout time.Duration
	now               func() time.Time
	log               logger.Logger
}

// New creates an empty hub. A nil publisher or mirror disables that side channel.
func New(publisher AlertPublisher, mirror LocationMirror, log logger.Logger) *Hub {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if mirror == nil {
		mirror = noopMirror{}
	}
	return &Hub{
		conns:             make(map[string]Conn),
		identities:        make(map[string]models.Identity),
		users:             make(map[int64]string),
		drivers:           make(map[int64]models.DriverLocation),
		passengers:        make(map[int64]models.PassengerLocation),
		publisher:         publisher,
		mirror:            mirror,
		sideEffectTimeout: defaultSideEffectTimeout,
		now:               time.Now,
		log:               log,
	}
}

// Stats returns current table sizes.
func (h *Hub) Stats() models.HubStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	return models.HubStats{
		Connections:   len(h.conns),
		Authenticated: len(h.identities),
		Drivers:       len(h.drivers),
		Passengers:    len(h.passengers),
	}
}

// CloseAll closes every open connection. Handlers unregister them as their
// read loops exit.
func (h *Hub) CloseAll(ctx context.Context) {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Close(); err != nil {
			h.log.Debug(wrap.WithConnID(ctx, c.ID()), "close connection", "error", err)
		}
	}
	h.log.Info(ctx, "closed all websocket connections", "count", len(conns))
}

// fanoutLocked marshals msg once and enqueues it on every open connection
// accepted by filter (nil accepts all). Must be called with h.mu held.
// Returns the number of successful enqueues.
func (h *Hub) fanoutLocked(ctx context.Context, kind string, msg any, filter func(connID string) bool) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error(ctx, "marshal outbound message", err, "kind", kind)
		return 0
	}

	delivered := 0
	for id, c := range h.conns {
		if filter != nil && !filter(id) {
			metrics.RecordDelivery(kind, metrics.ResultSkipped)
			continue
		}
		if !c.IsOpen() {
			metrics.RecordDelivery(kind, metrics.ResultSkipped)
			continue
		}
		if err := c.Send(data); err != nil {
			metrics.RecordDelivery(kind, metrics.ResultFailed)
			h.log.Debug(wrap.WithConnID(ctx, id), "enqueue failed", "kind", kind, "error", err)
			continue
		}
		metrics.RecordDelivery(kind, metrics.ResultDelivered)
		delivered++
	}
	return delivered
}

// detached returns a context for work that must outlive the caller, such as
// publishing after the originating socket has gone away.
func (h *Hub) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), h.sideEffectTimeout)
}

func (h *Hub) updateGaugesLocked() {
	metrics.WebSocketConnectionsGauge.Set(float64(len(h.conns)))
	metrics.DriversOnlineGauge.Set(float64(len(h.drivers)))
}
