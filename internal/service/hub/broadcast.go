package hub

import (
	"context"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

// Fan-out kinds used for metrics.
const (
	kindSnapshot    = "nearby_kekes"
	kindSafetyAlert = "safety_alert"
	kindSOS         = "sos_alert"
)

// BroadcastDriverSnapshot sends the full driver table to every open connection.
func (h *Hub) BroadcastDriverSnapshot(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.broadcastSnapshotLocked(ctx)
}

func (h *Hub) broadcastSnapshotLocked(ctx context.Context) int {
	ctx = wrap.WithAction(ctx, types.ActionBroadcastSnapshot)
	msg := models.NewNearbyKekesMessage(h.snapshotLocked())
	return h.fanoutLocked(ctx, kindSnapshot, msg, nil)
}

// BroadcastSafetyAlert sends alert to every open connection, authenticated or
// not, and forwards it to the publisher. Returns the delivered count.
func (h *Hub) BroadcastSafetyAlert(ctx context.Context, alert models.SafetyAlert) int {
	ctx = wrap.WithAction(ctx, types.ActionBroadcastSafetyAlert)

	h.mu.Lock()
	delivered := h.fanoutLocked(ctx, kindSafetyAlert, models.NewSafetyAlertMessage(alert), nil)
	h.mu.Unlock()

	h.log.Info(ctx, "safety alert broadcast", "category", alert.Category, "delivered", delivered)

	pctx, cancel := h.detached(ctx)
	defer cancel()
	if err := h.publisher.PublishSafetyAlert(pctx, alert); err != nil {
		h.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "publish safety alert", "error", err)
	}
	return delivered
}
