package models

import (
	"strconv"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// Outbound websocket envelopes. Each embeds its payload so the JSON stays flat.

type NearbyKekesMessage struct {
	Type      types.MessageType `json:"type"`
	Locations []DriverLocation  `json:"locations"`
}

func NewNearbyKekesMessage(locations []DriverLocation) NearbyKekesMessage {
	if locations == nil {
		locations = []DriverLocation{}
	}
	return NearbyKekesMessage{Type: types.MsgNearbyKekes, Locations: locations}
}

type SafetyAlertMessage struct {
	Type types.MessageType `json:"type"`
	SafetyAlert
}

func NewSafetyAlertMessage(a SafetyAlert) SafetyAlertMessage {
	return SafetyAlertMessage{Type: types.MsgSafetyAlert, SafetyAlert: a}
}

type SOSAlertMessage struct {
	Type types.MessageType `json:"type"`
	SOSAlert
}

func NewSOSAlertMessage(a SOSAlert) SOSAlertMessage {
	return SOSAlertMessage{Type: types.MsgSOSAlert, SOSAlert: a}
}

type ErrorMessage struct {
	Type   types.MessageType `json:"type"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewErrorMessage(msg string, fields map[string]string) ErrorMessage {
	return ErrorMessage{Type: types.MsgError, Error: msg, Fields: fields}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
