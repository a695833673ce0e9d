package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionWSConnect        = "ws_connect"
	ActionWSDisconnect     = "ws_disconnect"
	ActionWSAuth           = "ws_auth"
	ActionWSLocationUpdate = "ws_location_update"
	ActionWSSOS            = "ws_sos"
	ActionWSAnomaly        = "ws_anomaly_alert"

	ActionBroadcastSnapshot    = "broadcast_driver_snapshot"
	ActionBroadcastSafetyAlert = "broadcast_safety_alert"
	ActionRouteSOS             = "route_sos"

	ActionIssueToken    = "issue_token"
	ActionValidateToken = "validate_token"

	ActionSubmitSafetyReport = "submit_safety_report"
	ActionGetHotspots        = "get_hotspots"
	ActionRouteFeedback      = "route_feedback"
	ActionRouteIntelligence  = "route_intelligence"
	ActionSafetyAnalytics    = "safety_analytics"
	ActionDriverStats        = "driver_stats"
	ActionFareEstimate       = "fare_estimate"
	ActionLiveKekes          = "live_kekes"
	ActionNearbyKekes        = "nearby_kekes"
	ActionManualSafetyAlert  = "manual_safety_alert"
	ActionIncidentReceived   = "incident_received"
	ActionStartTrip          = "start_trip"
	ActionCompleteTrip       = "complete_trip"

	ActionServerStarted  = "server_started"
	ActionServerShutdown = "server_shutdown"

	ActionExternalServiceFailed = "external_service_failed"
)
