package hub

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

// Connect adds a freshly opened connection. It is unauthenticated until Register.
func (h *Hub) Connect(ctx context.Context, c Conn) error {
	const op = "Hub.Connect"
	if c == nil {
		return fmt.Errorf("%s: %w", op, types.ErrNilConnection)
	}

	h.mu.Lock()
	h.conns[c.ID()] = c
	total := len(h.conns)
	h.updateGaugesLocked()
	h.mu.Unlock()

	h.log.Debug(wrap.WithConnID(ctx, c.ID()), "websocket connected", "connections", total)
	return nil
}

// Register binds c to userID/role. The latest connection for a user wins:
// an older connection of the same user loses its identity and is closed.
// Re-authenticating c as somebody else releases everything c held before.
func (h *Hub) Register(ctx context.Context, c Conn, userID int64, role types.UserRole) error {
	const op = "Hub.Register"
	if c == nil {
		return fmt.Errorf("%s: %w", op, types.ErrNilConnection)
	}
	if userID <= 0 || role == "" {
		return fmt.Errorf("%s: %w", op, types.ErrInvalidIdentity)
	}

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		ConnID: c.ID(),
		UserID: strconv.FormatInt(userID, 10),
	})
	ident := models.Identity{UserID: userID, Role: role}

	h.mu.Lock()

	h.conns[c.ID()] = c

	var forget []int64
	if prev, ok := h.identities[c.ID()]; ok && prev.UserID != userID {
		if h.releaseUserLocked(c.ID(), prev.UserID) {
			forget = append(forget, prev.UserID)
		}
	}

	var displaced Conn
	if owner, ok := h.users[userID]; ok && owner != c.ID() {
		displaced = h.conns[owner]
		// Gone from fan-out before Close runs below.
		delete(h.conns, owner)
		delete(h.identities, owner)
	}

	h.identities[c.ID()] = ident
	h.users[userID] = c.ID()

	// Entries the user left under a different role are stale now.
	if role != types.RoleDriver {
		if _, ok := h.drivers[userID]; ok {
			delete(h.drivers, userID)
			forget = append(forget, userID)
		}
	}
	if role != types.RolePassenger {
		delete(h.passengers, userID)
	}

	if len(forget) > 0 {
		h.broadcastSnapshotLocked(ctx)
	}
	h.updateGaugesLocked()
	h.mu.Unlock()

	if displaced != nil {
		h.log.Warn(ctx, "replacing existing connection for user", "old_conn_id", displaced.ID())
		if err := displaced.Close(); err != nil {
			h.log.Debug(ctx, "close displaced connection", "error", err)
		}
	}
	h.forgetDrivers(ctx, forget)

	h.log.Info(ctx, "websocket authenticated", "role", role)
	return nil
}

// Unregister removes c and, if c still owns its user, that user's locations.
// Safe to call more than once.
func (h *Hub) Unregister(ctx context.Context, c Conn) {
	if c == nil {
		return
	}
	ctx = wrap.WithConnID(ctx, c.ID())

	h.mu.Lock()
	_, known := h.conns[c.ID()]
	ident, authed := h.identities[c.ID()]
	if !known && !authed {
		h.mu.Unlock()
		return
	}

	delete(h.conns, c.ID())
	delete(h.identities, c.ID())

	var forget []int64
	if authed && h.releaseUserLocked(c.ID(), ident.UserID) {
		forget = append(forget, ident.UserID)
		h.broadcastSnapshotLocked(ctx)
	}
	total := len(h.conns)
	h.updateGaugesLocked()
	h.mu.Unlock()

	h.forgetDrivers(ctx, forget)
	h.log.Debug(ctx, "websocket unregistered", "connections", total, "was_authenticated", authed)
}

// LookupUser returns the connection currently owning userID.
func (h *Hub) LookupUser(userID int64) (Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, ok := h.users[userID]
	if !ok {
		return nil, false
	}
	c, ok := h.conns[id]
	return c, ok
}

// LookupConn returns the identity bound to connID.
func (h *Hub) LookupConn(connID string) (models.Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ident, ok := h.identities[connID]
	return ident, ok
}

// releaseUserLocked drops userID's ownership and locations, but only if
// connID is still the owner. Reports whether a driver entry was removed.
func (h *Hub) releaseUserLocked(connID string, userID int64) bool {
	if h.users[userID] != connID {
		return false
	}
	delete(h.users, userID)
	delete(h.passengers, userID)

	if _, ok := h.drivers[userID]; ok {
		delete(h.drivers, userID)
		return true
	}
	return false
}

func (h *Hub) forgetDrivers(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := h.detached(ctx)
	defer cancel()

	for _, id := range ids {
		if err := h.mirror.RemoveDriver(ctx, id); err != nil {
			h.log.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "mirror remove driver", "driver_id", id, "error", err)
		}
	}
}
