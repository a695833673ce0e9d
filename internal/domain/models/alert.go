package models

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

const (
	SOSPriority         = "CRITICAL"
	AnomalyCategory     = "Trip Anomaly"
	AnomalyLocation     = "Active Trip"
	SOSTimestampLayout  = "2006-01-02T15:04:05.000Z07:00"
	defaultSOSUserLabel = "User"
)

// NotifiedAuthorities is a static annotation attached to every SOS alert.
// Nothing is dispatched to these agencies by the server itself.
var NotifiedAuthorities = []string{"KAROTA", "Police", "Emergency Response"}

// SafetyAlert is broadcast to every open connection.
type SafetyAlert struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

// SOSRequest is what a sender supplies. Origin is nil when the client sent no
// usable coordinates.
type SOSRequest struct {
	Origin   *Point
	Location string
	UserName string
	// Trip is the client's trip context (driver, keke, origin, destination,
	// progress and whatever else it tracks), relayed byte for byte.
	Trip json.RawMessage
}

// SOSAlert is the routed emergency as seen by recipients.
type SOSAlert struct {
	SenderID            int64           `json:"userId"`
	SenderName          string          `json:"userName"`
	Location            string          `json:"location"`
	Lat                 *float64        `json:"lat"`
	Lng                 *float64        `json:"lng"`
	Trip                json.RawMessage `json:"tripData"`
	Timestamp           string          `json:"timestamp"`
	IsSOS               bool            `json:"isSOS"`
	Priority            string          `json:"priority"`
	NotifiedAuthorities []string        `json:"notifiedAuthorities"`
}

// NewSOSAlert builds the alert for sender at time now.
func NewSOSAlert(sender Identity, req SOSRequest, now time.Time) SOSAlert {
	name := req.UserName
	if name == "" {
		name = defaultSOSUserLabel + " " + formatID(sender.UserID)
	}

	alert := SOSAlert{
		SenderID:            sender.UserID,
		SenderName:          name,
		Location:            req.Location,
		Trip:                req.Trip,
		Timestamp:           now.UTC().Format(SOSTimestampLayout),
		IsSOS:               true,
		Priority:            SOSPriority,
		NotifiedAuthorities: append([]string(nil), NotifiedAuthorities...),
	}
	if req.Origin != nil {
		lat, lng := req.Origin.Lat, req.Origin.Lng
		alert.Lat, alert.Lng = &lat, &lng
	}
	return alert
}

// AnomalyAlert is reported by a driver's client when trip monitoring flags
// the current trip.
type AnomalyAlert struct {
	DriverID  int64           `json:"driverId"`
	Reason    string          `json:"reason"`
	RiskLevel types.RiskLevel `json:"riskLevel"`
}

// SafetyAlert converts the anomaly into the broadcast form.
func (a AnomalyAlert) SafetyAlert() SafetyAlert {
	return SafetyAlert{
		Category: AnomalyCategory,
		Location: AnomalyLocation,
		Summary:  "Driver " + formatID(a.DriverID) + ": " + a.Reason + " (Risk: " + string(a.RiskLevel) + ")",
	}
}
