package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/validator"
)

// Envelope carries only the discriminator.
type Envelope struct {
	Type types.MessageType `json:"type"`
}

// UserID accepts both 7 and "7" since browser clients are inconsistent.
type UserID int64

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("userId must be an integer: %w", err)
	}
	*id = UserID(n)
	return nil
}

// Message is implemented by every inbound payload.
type Message interface {
	Validate(v *validator.Validator)
}

// Websocket message: Client → auth
type AuthMessage struct {
	UserID UserID         `json:"userId"`
	Role   types.UserRole `json:"role"`
}

func (m *AuthMessage) Validate(v *validator.Validator) {
	v.Check(m.UserID > 0, "userId", "must be a positive integer")
	v.Check(m.Role != "", "role", "must be provided")
}

// Websocket message: Client → location_update
type LocationUpdateMessage struct {
	Lat          *float64           `json:"lat"`
	Lng          *float64           `json:"lng"`
	Name         string             `json:"name"`
	KekeID       string             `json:"kekeId"`
	Status       types.DriverStatus `json:"status"`
	IsActiveTrip bool               `json:"isActiveTrip"`
}

func (m *LocationUpdateMessage) Validate(v *validator.Validator) {
	v.Check(m.Lat != nil, "lat", "must be provided")
	v.Check(m.Lng != nil, "lng", "must be provided")
	if m.Lat != nil {
		v.Check(validator.ValidLatitude(*m.Lat), "lat", "must be between -90 and 90")
	}
	if m.Lng != nil {
		v.Check(validator.ValidLongitude(*m.Lng), "lng", "must be between -180 and 180")
	}
	if m.Status != "" {
		v.Check(validator.PermittedValue(m.Status, types.DriverAvailable, types.DriverOnTrip, types.DriverOffline),
			"status", "must be one of: Available, On Trip, Offline")
	}
}

func (m *LocationUpdateMessage) ToModel() models.LocationUpdate {
	return models.LocationUpdate{
		Point:        models.Point{Lat: *m.Lat, Lng: *m.Lng},
		Name:         m.Name,
		KekeID:       m.KekeID,
		Status:       m.Status,
		IsActiveTrip: m.IsActiveTrip,
	}
}

// Websocket message: Client → sos
type SOSMessage struct {
	Lat      *float64        `json:"lat"`
	Lng      *float64        `json:"lng"`
	Location string          `json:"location"`
	UserName string          `json:"userName"`
	TripData json.RawMessage `json:"tripData"`
}

// SOS is never rejected for its payload; bad coordinates are dropped in
// ToModel instead.
func (m *SOSMessage) Validate(*validator.Validator) {}

// HasUsableOrigin reports whether both coordinates are present and in range.
func (m *SOSMessage) HasUsableOrigin() bool {
	return m.Lat != nil && m.Lng != nil &&
		validator.ValidLatitude(*m.Lat) && validator.ValidLongitude(*m.Lng)
}

// HasAnyCoordinate reports whether the client sent at least one coordinate.
func (m *SOSMessage) HasAnyCoordinate() bool {
	return m.Lat != nil || m.Lng != nil
}

func (m *SOSMessage) ToModel() models.SOSRequest {
	req := models.SOSRequest{
		Location: m.Location,
		UserName: m.UserName,
	}
	if len(m.TripData) > 0 && string(m.TripData) != "null" {
		req.Trip = m.TripData
	}
	if m.HasUsableOrigin() {
		req.Origin = &models.Point{Lat: *m.Lat, Lng: *m.Lng}
	}
	return req
}

// Websocket message: Driver → anomaly_alert
type AnomalyMessage struct {
	Reason    string          `json:"reason"`
	RiskLevel types.RiskLevel `json:"risk_level"`
}

func (m *AnomalyMessage) Validate(v *validator.Validator) {
	v.Check(m.Reason != "", "reason", "must be provided")
	if m.RiskLevel != "" {
		v.Check(validator.PermittedValue(m.RiskLevel, types.RiskLow, types.RiskMedium, types.RiskHigh),
			"risk_level", "must be one of: low, medium, high")
	}
}

// Decode reads the discriminator and unmarshals data into the matching
// payload. Validation is left to the caller.
func Decode(data []byte) (types.MessageType, Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", types.ErrMalformedMsg, err)
	}

	var msg Message
	switch env.Type {
	case types.MsgAuth:
		msg = &AuthMessage{}
	case types.MsgLocationUpdate:
		msg = &LocationUpdateMessage{}
	case types.MsgSOS:
		msg = &SOSMessage{}
	case types.MsgAnomalyAlert:
		msg = &AnomalyMessage{}
	default:
		return env.Type, nil, fmt.Errorf("%w: %q", types.ErrUnknownMsgType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return env.Type, nil, fmt.Errorf("%w: %v", types.ErrMalformedMsg, err)
	}
	return env.Type, msg, nil
}
