package types

// UserRole is the role a websocket client declares in its auth message, or
// the role carried in an HTTP access token.
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleDriver    UserRole = "driver"
	RolePassenger UserRole = "passenger"
	RoleAdmin     UserRole = "admin"
)

// DriverStatus is the availability a driver reports with its location.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "Available"
	DriverOnTrip    DriverStatus = "On Trip"
	DriverOffline   DriverStatus = "Offline"
)

// RiskLevel is the severity attached to safety reports and anomalies.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ReportType distinguishes the kinds of reports stored by the safety service.
type ReportType string

const (
	ReportIncident      ReportType = "incident"
	ReportLostFound     ReportType = "lost_found"
	ReportSafety        ReportType = "safety_report"
	ReportRouteFeedback ReportType = "route_feedback"
)

// TripStatus is the lifecycle state of a trip row.
type TripStatus string

const (
	TripPending   TripStatus = "pending"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)
