package hub

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
)

const (
	// SOSRadiusKm bounds SOS delivery to drivers and passengers. Inclusive.
	SOSRadiusKm = 5.0

	// FailOpenOnMissingLocation delivers SOS to drivers whose position is not
	// known yet. Passengers always need a stored position.
	FailOpenOnMissingLocation = true
)

// RouteSOS delivers an SOS from sender to every connection the proximity
// policy selects, never to the sender itself. An unauthenticated sender is
// rejected.
func (h *Hub) RouteSOS(ctx context.Context, sender Conn, req models.SOSRequest) (int, error) {
	const op = "Hub.RouteSOS"
	if sender == nil {
		return 0, fmt.Errorf("%s: %w", op, types.ErrNilConnection)
	}
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRouteSOS, ConnID: sender.ID()})

	if req.Origin != nil && !ValidPoint(*req.Origin) {
		h.log.Warn(ctx, "sos origin out of range, routing without proximity filter",
			"lat", req.Origin.Lat, "lng", req.Origin.Lng)
		req.Origin = nil
	}

	h.mu.Lock()
	ident, ok := h.identities[sender.ID()]
	if !ok {
		h.mu.Unlock()
		return 0, fmt.Errorf("%s: %w", op, types.ErrUnauthenticated)
	}

	alert := models.NewSOSAlert(ident, req, h.now())
	delivered := h.fanoutLocked(ctx, kindSOS, models.NewSOSAlertMessage(alert), func(connID string) bool {
		return connID != sender.ID() && h.sosRecipientLocked(connID, req.Origin)
	})
	h.mu.Unlock()

	metrics.SOSRecipients.Observe(float64(delivered))
	h.log.Warn(ctx, "sos routed",
		"sender_id", ident.UserID,
		"role", ident.Role,
		"has_origin", req.Origin != nil,
		"delivered", delivered,
	)

	pctx, cancel := h.detached(ctx)
	defer cancel()
	if err := h.publisher.PublishSOS(pctx, alert); err != nil {
		h.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "publish sos", "error", err)
	}
	return delivered, nil
}

// sosRecipientLocked decides whether the connection identified by connID should
// receive an SOS raised at origin. Must be called with h.mu held.
func (h *Hub) sosRecipientLocked(connID string, origin *models.Point) bool {
	ident, ok := h.identities[connID]
	if !ok {
		// Connected but not yet authenticated clients still hear the alarm.
		return true
	}

	switch ident.Role {
	case types.RoleDriver:
		loc, ok := h.drivers[ident.UserID]
		if !ok {
			return FailOpenOnMissingLocation
		}
		return withinRadius(origin, loc.Point())

	case types.RolePassenger:
		loc, ok := h.passengers[ident.UserID]
		if !ok || !loc.IsActiveTrip {
			return false
		}
		return withinRadius(origin, loc.Point())

	default:
		// admins and dashboards
		return true
	}
}

func withinRadius(origin *models.Point, p models.Point) bool {
	if origin == nil {
		return true
	}
	return DistanceKm(*origin, p) <= SOSRadiusKm
}

// ReportAnomaly turns a trip anomaly flagged by sender into a safety alert for
// everyone. The sender must be authenticated; its user id names the driver.
func (h *Hub) ReportAnomaly(ctx context.Context, sender Conn, reason string, risk types.RiskLevel) (int, error) {
	const op = "Hub.ReportAnomaly"
	if sender == nil {
		return 0, fmt.Errorf("%s: %w", op, types.ErrNilConnection)
	}
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionWSAnomaly, ConnID: sender.ID()})

	h.mu.Lock()
	ident, ok := h.identities[sender.ID()]
	if !ok {
		h.mu.Unlock()
		return 0, fmt.Errorf("%s: %w", op, types.ErrUnauthenticated)
	}
	anomaly := models.AnomalyAlert{DriverID: ident.UserID, Reason: reason, RiskLevel: risk}
	delivered := h.fanoutLocked(ctx, kindSafetyAlert, models.NewSafetyAlertMessage(anomaly.SafetyAlert()), nil)
	h.mu.Unlock()

	h.log.Warn(ctx, "trip anomaly reported", "driver_id", ident.UserID, "risk", risk, "delivered", delivered)

	pctx, cancel := h.detached(ctx)
	defer cancel()
	if err := h.publisher.PublishAnomaly(pctx, anomaly); err != nil {
		h.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "publish anomaly", "error", err)
	}
	return delivered, nil
}
