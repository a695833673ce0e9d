package rabbit

// Alert bus topology.
const (
	SafetyExchange = "safety_topic"

	KeySOSRaised       = "sos.raised"
	KeyAnomalyReported = "anomaly.reported"
	KeySafetyBroadcast = "safety.broadcast"

	IncidentQueue   = "hub_incidents"
	IncidentBinding = "incident.#"
)
