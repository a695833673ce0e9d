package models

import "github.com/Temutjin2k/kekelink/internal/domain/types"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Identity is what a connection becomes after an auth message.
type Identity struct {
	UserID int64          `json:"userId"`
	Role   types.UserRole `json:"role"`
}

// DriverLocation is the last reported position of an online driver. It is
// also the element type of the nearby_kekes snapshot.
type DriverLocation struct {
	DriverID int64              `json:"driverId"`
	Lat      float64            `json:"lat"`
	Lng      float64            `json:"lng"`
	Name     string             `json:"name"`
	KekeID   string             `json:"kekeId"`
	Status   types.DriverStatus `json:"status"`
}

func (d DriverLocation) Point() Point {
	return Point{Lat: d.Lat, Lng: d.Lng}
}

// PassengerLocation is private to the server; it only feeds SOS filtering.
type PassengerLocation struct {
	PassengerID  int64   `json:"passengerId"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	IsActiveTrip bool    `json:"isActiveTrip"`
}

func (p PassengerLocation) Point() Point {
	return Point{Lat: p.Lat, Lng: p.Lng}
}

// HubStats is a point-in-time view of the realtime hub.
type HubStats struct {
	Connections   int `json:"connections"`
	Authenticated int `json:"authenticated"`
	Drivers       int `json:"drivers"`
	Passengers    int `json:"passengers"`
}

// LocationUpdate is a position report from an authenticated connection. The
// hub stores it as a driver or passenger entry depending on the sender's role.
type LocationUpdate struct {
	Point        Point
	Name         string
	KekeID       string
	Status       types.DriverStatus
	IsActiveTrip bool
}

// NearbyDriver is a driver returned by a radius query, with its distance
// from the query point.
type NearbyDriver struct {
	DriverLocation
	DistanceKm float64 `json:"distanceKm"`
}

// LiveKekes is the admin view of the in-process driver table.
type LiveKekes struct {
	Drivers []DriverLocation `json:"drivers"`
	Stats   HubStats         `json:"stats"`
}
