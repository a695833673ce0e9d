package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	closed bool
	full   bool
	msgs   [][]byte
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.ErrConnClosed
	}
	if c.full {
		return types.ErrSendBufferFull
	}
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// messages returns the decoded messages of the given type, oldest first.
func (c *fakeConn) messages(t *testing.T, msgType types.MessageType) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	for _, raw := range c.msgs {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		if m["type"] == string(msgType) {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) lastSnapshot(t *testing.T) []models.DriverLocation {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.msgs) - 1; i >= 0; i-- {
		var m models.NearbyKekesMessage
		require.NoError(t, json.Unmarshal(c.msgs[i], &m))
		if m.Type == types.MsgNearbyKekes {
			return m.Locations
		}
	}
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

type fakePublisher struct {
	mu        sync.Mutex
	sos       []models.SOSAlert
	anomalies []models.AnomalyAlert
	safety    []models.SafetyAlert
	err       error
}

func (p *fakePublisher) PublishSOS(_ context.Context, a models.SOSAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sos = append(p.sos, a)
	return p.err
}

func (p *fakePublisher) PublishAnomaly(_ context.Context, a models.AnomalyAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.anomalies = append(p.anomalies, a)
	return p.err
}

func (p *fakePublisher) PublishSafetyAlert(_ context.Context, a models.SafetyAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.safety = append(p.safety, a)
	return p.err
}

type fakeMirror struct {
	mu      sync.Mutex
	drivers map[int64]models.DriverLocation
	removed []int64
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{drivers: make(map[int64]models.DriverLocation)}
}

func (m *fakeMirror) UpsertDriver(_ context.Context, loc models.DriverLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[loc.DriverID] = loc
	return nil
}

func (m *fakeMirror) RemoveDriver(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, id)
	m.removed = append(m.removed, id)
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 123_000_000, time.UTC)

func newTestHub(t *testing.T) (*Hub, *fakePublisher, *fakeMirror) {
	t.Helper()
	pub := &fakePublisher{}
	mirror := newFakeMirror()
	h := New(pub, mirror, logger.Discard())
	h.now = func() time.Time { return fixedNow }
	return h, pub, mirror
}

// connectAs opens a fake connection and, when userID > 0, authenticates it.
func connectAs(t *testing.T, h *Hub, id string, userID int64, role types.UserRole) *fakeConn {
	t.Helper()
	c := newFakeConn(id)
	require.NoError(t, h.Connect(context.Background(), c))
	if userID > 0 {
		require.NoError(t, h.Register(context.Background(), c, userID, role))
	}
	return c
}

func driverAt(t *testing.T, h *Hub, c *fakeConn, lat, lng float64) {
	t.Helper()
	ok, err := h.UpdateLocation(context.Background(), c, models.LocationUpdate{
		Point:  models.Point{Lat: lat, Lng: lng},
		Name:   "Musa",
		KekeID: "KN-" + c.id,
		Status: types.DriverAvailable,
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func passengerAt(t *testing.T, h *Hub, c *fakeConn, lat, lng float64, active bool) {
	t.Helper()
	ok, err := h.UpdateLocation(context.Background(), c, models.LocationUpdate{
		Point:        models.Point{Lat: lat, Lng: lng},
		IsActiveTrip: active,
	})
	require.NoError(t, err)
	require.True(t, ok)
}
