package hub

import (
	"context"
	"testing"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/stretchr/testify/require"
)

func TestUpdateLocation_Unauthenticated(t *testing.T) {
	h, _, _ := newTestHub(t)
	c := connectAs(t, h, "c1", 0, "")

	ok, err := h.UpdateLocation(context.Background(), c, models.LocationUpdate{Point: models.Point{Lat: 12, Lng: 8}})
	require.ErrorIs(t, err, types.ErrUnauthenticated)
	require.False(t, ok)
	require.Zero(t, c.count())
}

func TestUpdateLocation_InvalidCoordinates(t *testing.T) {
	h, _, _ := newTestHub(t)
	c := connectAs(t, h, "c1", 1, types.RoleDriver)

	_, err := h.UpdateLocation(context.Background(), c, models.LocationUpdate{Point: models.Point{Lat: 91, Lng: 8}})
	require.ErrorIs(t, err, types.ErrInvalidCoordinates)
	require.Empty(t, h.Snapshot())
}

func TestUpdateLocation_DriverBroadcastsSortedSnapshot(t *testing.T) {
	h, _, mirror := newTestHub(t)
	observer := connectAs(t, h, "obs", 0, "")

	d20 := connectAs(t, h, "d20", 20, types.RoleDriver)
	d10 := connectAs(t, h, "d10", 10, types.RoleDriver)

	driverAt(t, h, d20, 12.01, 8.51)
	require.Len(t, observer.lastSnapshot(t), 1)

	_, err := h.UpdateLocation(context.Background(), d10, models.LocationUpdate{
		Point:  models.Point{Lat: 12.02, Lng: 8.52},
		Name:   "Ade",
		KekeID: "KN-10",
	})
	require.NoError(t, err)

	snap := observer.lastSnapshot(t)
	require.Len(t, snap, 2)
	require.Equal(t, int64(10), snap[0].DriverID)
	require.Equal(t, int64(20), snap[1].DriverID)
	require.Equal(t, types.DriverAvailable, snap[0].Status, "empty status defaults to Available")
	require.Equal(t, "Ade", snap[0].Name)

	// Every open connection gets the same snapshot, drivers included.
	require.Equal(t, snap, d20.lastSnapshot(t))
	require.Equal(t, snap, h.Snapshot())

	require.Len(t, mirror.drivers, 2)
}

func TestUpdateLocation_SequentialDriversKeepLatestPositions(t *testing.T) {
	h, _, _ := newTestHub(t)
	observer := connectAs(t, h, "obs", 5, types.RolePassenger)

	d1 := connectAs(t, h, "d1", 1, types.RoleDriver)
	d2 := connectAs(t, h, "d2", 2, types.RoleDriver)
	d3 := connectAs(t, h, "d3", 3, types.RoleDriver)

	steps := []struct {
		conn     *fakeConn
		lat, lng float64
	}{
		{d1, 12.00, 8.50},
		{d2, 12.10, 8.60},
		{d3, 12.20, 8.70},
		{d2, 12.15, 8.65},
	}

	want := map[int64]models.Point{}
	for i, step := range steps {
		driverAt(t, h, step.conn, step.lat, step.lng)
		id, _ := h.LookupConn(step.conn.id)
		want[id.UserID] = models.Point{Lat: step.lat, Lng: step.lng}

		require.Len(t, observer.messages(t, types.MsgNearbyKekes), i+1, "one snapshot per update")

		snap := observer.lastSnapshot(t)
		require.Len(t, snap, len(want))
		for _, loc := range snap {
			p, ok := want[loc.DriverID]
			require.True(t, ok)
			require.InDelta(t, p.Lat, loc.Lat, 1e-9, "driver %d lat after step %d", loc.DriverID, i)
			require.InDelta(t, p.Lng, loc.Lng, 1e-9, "driver %d lng after step %d", loc.DriverID, i)
		}
	}

	final := observer.lastSnapshot(t)
	require.Equal(t, []int64{1, 2, 3}, []int64{final[0].DriverID, final[1].DriverID, final[2].DriverID})
	require.InDelta(t, 12.15, final[1].Lat, 1e-9)
	require.Equal(t, final, h.Snapshot())
}

func TestUpdateLocation_DriverUpsertReplaces(t *testing.T) {
	h, _, _ := newTestHub(t)
	d := connectAs(t, h, "d", 1, types.RoleDriver)

	driverAt(t, h, d, 12.0, 8.5)
	driverAt(t, h, d, 12.1, 8.6)

	snap := h.Snapshot()
	require.Len(t, snap, 1)
	require.InDelta(t, 12.1, snap[0].Lat, 1e-9)
}

func TestUpdateLocation_PassengerIsSilent(t *testing.T) {
	h, _, _ := newTestHub(t)
	observer := connectAs(t, h, "obs", 0, "")
	p := connectAs(t, h, "p", 2, types.RolePassenger)

	passengerAt(t, h, p, 12.0, 8.5, true)

	require.Zero(t, observer.count())
	loc, ok := h.Passenger(2)
	require.True(t, ok)
	require.True(t, loc.IsActiveTrip)
	require.Equal(t, models.HubStats{Connections: 2, Authenticated: 1, Passengers: 1}, h.Stats())
}

func TestUpdateLocation_OtherRolesIgnored(t *testing.T) {
	h, _, _ := newTestHub(t)
	a := connectAs(t, h, "a", 9, types.RoleAdmin)

	ok, err := h.UpdateLocation(context.Background(), a, models.LocationUpdate{Point: models.Point{Lat: 12, Lng: 8}})
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, h.Snapshot())
}

func TestRemoveDriver(t *testing.T) {
	h, _, mirror := newTestHub(t)
	observer := connectAs(t, h, "obs", 0, "")

	require.NoError(t, h.UpdateDriver(context.Background(), models.DriverLocation{DriverID: 4, Lat: 12, Lng: 8}))
	require.Len(t, observer.lastSnapshot(t), 1)

	require.True(t, h.RemoveDriver(context.Background(), 4))
	require.Empty(t, observer.lastSnapshot(t))
	require.Equal(t, []int64{4}, mirror.removed)

	sent := observer.count()
	require.False(t, h.RemoveDriver(context.Background(), 4))
	require.Equal(t, sent, observer.count())
}

func TestUpdatePassenger_Validation(t *testing.T) {
	h, _, _ := newTestHub(t)

	err := h.UpdatePassenger(context.Background(), models.PassengerLocation{PassengerID: 1, Lat: 12, Lng: 200})
	require.ErrorIs(t, err, types.ErrInvalidCoordinates)

	require.NoError(t, h.UpdatePassenger(context.Background(), models.PassengerLocation{PassengerID: 1, Lat: 12, Lng: 8}))
	require.True(t, h.RemovePassenger(1))
	require.False(t, h.RemovePassenger(1))
}
