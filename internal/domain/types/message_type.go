package types

// MessageType is the "type" discriminator of websocket envelopes.
type MessageType string

func (m MessageType) String() string {
	return string(m)
}

// Inbound
const (
	MsgAuth           MessageType = "auth"
	MsgLocationUpdate MessageType = "location_update"
	MsgSOS            MessageType = "sos"
	MsgAnomalyAlert   MessageType = "anomaly_alert"
)

// Outbound
const (
	MsgNearbyKekes MessageType = "nearby_kekes"
	MsgSafetyAlert MessageType = "safety_alert"
	MsgSOSAlert    MessageType = "sos_alert"
	MsgError       MessageType = "error"
)
