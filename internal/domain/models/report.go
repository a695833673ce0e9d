package models

import (
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// SafetyReport is an incident or safety report filed over HTTP.
type SafetyReport struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	TripID    *int64           `json:"trip_id,omitempty"`
	Type      types.ReportType `json:"type"`
	Category  string           `json:"category"`
	RiskLevel types.RiskLevel  `json:"risk_level"`
	Content   string           `json:"content"`
	Location  string           `json:"location"`
	AudioURL  string           `json:"audio_url,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsHighRisk reports whether the report must be pushed to every client.
func (r SafetyReport) IsHighRisk() bool {
	return r.RiskLevel == types.RiskHigh
}

// Hotspot groups recent safety reports by place and kind.
type Hotspot struct {
	Location  string          `json:"location"`
	Category  string          `json:"category"`
	RiskLevel types.RiskLevel `json:"risk_level"`
	Count     int64           `json:"count"`
}

type RouteFeedback struct {
	ID             int64     `json:"id"`
	DriverID       int64     `json:"driver_id"`
	RouteName      string    `json:"route_name"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Rating         int       `json:"rating"`
	Comments       string    `json:"comments"`
	SafetyConcerns string    `json:"safety_concerns"`
	TrafficLevel   string    `json:"traffic_level"`
	CreatedAt      time.Time `json:"created_at"`
}

type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type RouteRisk struct {
	RouteName     string  `json:"route_name"`
	AvgRating     float64 `json:"avg_rating"`
	FeedbackCount int64   `json:"feedback_count"`
	Concerns      string  `json:"concerns"`
}

type SafetyAnalytics struct {
	TotalReports      int64          `json:"totalReports"`
	ReportsByCategory []CountByKey   `json:"reportsByCategory"`
	ReportsByRisk     []CountByKey   `json:"reportsByRisk"`
	RecentAnomalies   []SafetyReport `json:"recentAnomalies"`
	RouteRisk         []RouteRisk    `json:"routeRisk"`
}

type DriverStat struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	TotalTrips      int64   `json:"total_trips"`
	AvgSafetyScore  float64 `json:"avg_safety_score"`
	HighRiskReports int64   `json:"high_risk_reports"`
}

// Classification is the scoring service's verdict on free-text report content.
type Classification struct {
	Category  string          `json:"category"`
	RiskLevel types.RiskLevel `json:"risk_level"`
	Summary   string          `json:"summary"`
}

type FareRequest struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	TimeOfDay   string          `json:"time_of_day"`
	DemandLevel types.RiskLevel `json:"demand_level"`
}

type FareQuote struct {
	BaseFare         float64 `json:"base_fare"`
	DemandMultiplier float64 `json:"demand_multiplier"`
	TotalFare        float64 `json:"total_fare"`
	Explanation      string  `json:"explanation"`
	Fallback         bool    `json:"fallback"`
}

// IncidentEvent is an externally classified incident received from the alert bus.
type IncidentEvent struct {
	Category  string          `json:"category"`
	Location  string          `json:"location"`
	Summary   string          `json:"summary"`
	RiskLevel types.RiskLevel `json:"risk_level"`
}

func (e IncidentEvent) SafetyAlert() SafetyAlert {
	return SafetyAlert{Category: e.Category, Location: e.Location, Summary: e.Summary}
}
