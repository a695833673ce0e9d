package hub

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

// UpdateLocation stores a position report from c under the identity c is
// bound to. Drivers trigger a snapshot broadcast; passengers are stored
// silently; other roles are ignored. Reports whether anything was stored.
func (h *Hub) UpdateLocation(ctx context.Context, c Conn, upd models.LocationUpdate) (bool, error) {
	const op = "Hub.UpdateLocation"
	if c == nil {
		return false, fmt.Errorf("%s: %w", op, types.ErrNilConnection)
	}
	if !ValidPoint(upd.Point) {
		return false, fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates)
	}

	h.mu.Lock()
	ident, ok := h.identities[c.ID()]
	if !ok {
		h.mu.Unlock()
		return false, fmt.Errorf("%s: %w", op, types.ErrUnauthenticated)
	}

	switch ident.Role {
	case types.RoleDriver:
		loc := driverLocation(ident.UserID, upd)
		h.putDriverLocked(ctx, loc)
		h.mu.Unlock()
		h.mirrorDriver(ctx, loc)
		return true, nil

	case types.RolePassenger:
		h.passengers[ident.UserID] = models.PassengerLocation{
			PassengerID:  ident.UserID,
			Lat:          upd.Point.Lat,
			Lng:          upd.Point.Lng,
			IsActiveTrip: upd.IsActiveTrip,
		}
		h.mu.Unlock()
		return true, nil

	default:
		h.mu.Unlock()
		return false, nil
	}
}

// UpdateDriver upserts a driver entry and broadcasts the new snapshot.
// The caller is responsible for the driver having a live connection.
func (h *Hub) UpdateDriver(ctx context.Context, loc models.DriverLocation) error {
	const op = "Hub.UpdateDriver"
	if !ValidPoint(loc.Point()) {
		return fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates)
	}
	if loc.Status == "" {
		loc.Status = types.DriverAvailable
	}

	h.mu.Lock()
	h.putDriverLocked(ctx, loc)
	h.mu.Unlock()

	h.mirrorDriver(ctx, loc)
	return nil
}

// UpdatePassenger upserts a passenger entry. Nothing is broadcast.
func (h *Hub) UpdatePassenger(ctx context.Context, loc models.PassengerLocation) error {
	const op = "Hub.UpdatePassenger"
	if !ValidPoint(loc.Point()) {
		return fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates)
	}

	h.mu.Lock()
	h.passengers[loc.PassengerID] = loc
	h.mu.Unlock()
	return nil
}

// RemoveDriver deletes a driver entry and broadcasts when one existed.
func (h *Hub) RemoveDriver(ctx context.Context, driverID int64) bool {
	h.mu.Lock()
	_, ok := h.drivers[driverID]
	if ok {
		delete(h.drivers, driverID)
		h.broadcastSnapshotLocked(ctx)
		h.updateGaugesLocked()
	}
	h.mu.Unlock()

	if ok {
		h.forgetDrivers(ctx, []int64{driverID})
	}
	return ok
}

// RemovePassenger deletes a passenger entry.
func (h *Hub) RemovePassenger(passengerID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.passengers[passengerID]
	delete(h.passengers, passengerID)
	return ok
}

// Snapshot returns every driver entry ordered by driver id.
func (h *Hub) Snapshot() []models.DriverLocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Passenger returns the stored entry for passengerID.
func (h *Hub) Passenger(passengerID int64) (models.PassengerLocation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	loc, ok := h.passengers[passengerID]
	return loc, ok
}

func (h *Hub) snapshotLocked() []models.DriverLocation {
	out := make([]models.DriverLocation, 0, len(h.drivers))
	for _, loc := range h.drivers {
		out = append(out, loc)
	}
	slices.SortFunc(out, func(a, b models.DriverLocation) int {
		return cmp.Compare(a.DriverID, b.DriverID)
	})
	return out
}

func (h *Hub) putDriverLocked(ctx context.Context, loc models.DriverLocation) {
	h.drivers[loc.DriverID] = loc
	h.updateGaugesLocked()
	h.broadcastSnapshotLocked(ctx)
}

func (h *Hub) mirrorDriver(ctx context.Context, loc models.DriverLocation) {
	ctx, cancel := h.detached(ctx)
	defer cancel()

	if err := h.mirror.UpsertDriver(ctx, loc); err != nil {
		h.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "mirror upsert driver", "driver_id", loc.DriverID, "error", err)
	}
}

func driverLocation(driverID int64, upd models.LocationUpdate) models.DriverLocation {
	status := upd.Status
	if status == "" {
		status = types.DriverAvailable
	}
	return models.DriverLocation{
		DriverID: driverID,
		Lat:      upd.Point.Lat,
		Lng:      upd.Point.Lng,
		Name:     upd.Name,
		KekeID:   upd.KekeID,
		Status:   status,
	}
}
