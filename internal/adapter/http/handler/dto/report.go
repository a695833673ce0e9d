package dto

import (
	"strings"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/validator"
)

const maxContentLen = 4000

type SafetyReportRequest struct {
	UserID    int64            `json:"user_id"`
	TripID    *int64           `json:"trip_id,omitempty"`
	Type      types.ReportType `json:"type"`
	Category  string           `json:"category"`
	RiskLevel types.RiskLevel  `json:"risk_level"`
	Content   string           `json:"content"`
	Location  string           `json:"location"`
	AudioURL  string           `json:"audio_url,omitempty"`
}

func (r *SafetyReportRequest) Validate(v *validator.Validator) {
	v.Check(r.UserID >= 0, "user_id", "must not be negative")
	v.Check(r.TripID == nil || *r.TripID > 0, "trip_id", "must be positive")
	v.Check(r.Type == "" || validator.PermittedValue(r.Type,
		types.ReportIncident, types.ReportLostFound, types.ReportSafety, types.ReportRouteFeedback),
		"type", "must be one of incident, lost_found, safety_report, route_feedback")
	v.Check(r.RiskLevel == "" || validator.PermittedValue(r.RiskLevel, types.RiskLow, types.RiskMedium, types.RiskHigh),
		"risk_level", "must be one of low, medium, high")
	v.Check(strings.TrimSpace(r.Content) != "", "content", "must be provided")
	v.Check(len(r.Content) <= maxContentLen, "content", "must not be more than 4000 bytes long")
	v.Check(len(r.Location) <= 500, "location", "must not be more than 500 bytes long")
}

func (r *SafetyReportRequest) ToModel() models.SafetyReport {
	return models.SafetyReport{
		UserID:    r.UserID,
		TripID:    r.TripID,
		Type:      r.Type,
		Category:  strings.TrimSpace(r.Category),
		RiskLevel: r.RiskLevel,
		Content:   strings.TrimSpace(r.Content),
		Location:  strings.TrimSpace(r.Location),
		AudioURL:  r.AudioURL,
	}
}

type RouteFeedbackRequest struct {
	DriverID       int64  `json:"driver_id"`
	RouteName      string `json:"route_name"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Rating         int    `json:"rating"`
	Comments       string `json:"comments"`
	SafetyConcerns string `json:"safety_concerns"`
	TrafficLevel   string `json:"traffic_level"`
}

func (r *RouteFeedbackRequest) Validate(v *validator.Validator) {
	v.Check(r.DriverID > 0, "driver_id", "must be a positive integer")
	v.Check(strings.TrimSpace(r.RouteName) != "", "route_name", "must be provided")
	v.Check(r.Rating >= 1 && r.Rating <= 5, "rating", "must be between 1 and 5")
	v.Check(len(r.Comments) <= maxContentLen, "comments", "must not be more than 4000 bytes long")
	v.Check(r.TrafficLevel == "" || validator.PermittedValue(r.TrafficLevel, "low", "medium", "high"),
		"traffic_level", "must be one of low, medium, high")
}

func (r *RouteFeedbackRequest) ToModel() models.RouteFeedback {
	return models.RouteFeedback{
		DriverID:       r.DriverID,
		RouteName:      strings.TrimSpace(r.RouteName),
		Origin:         r.Origin,
		Destination:    r.Destination,
		Rating:         r.Rating,
		Comments:       r.Comments,
		SafetyConcerns: r.SafetyConcerns,
		TrafficLevel:   r.TrafficLevel,
	}
}

type FareEstimateRequest struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	TimeOfDay   string          `json:"time_of_day"`
	DemandLevel types.RiskLevel `json:"demand_level"`
}

func (r *FareEstimateRequest) Validate(v *validator.Validator) {
	v.Check(strings.TrimSpace(r.Origin) != "", "origin", "must be provided")
	v.Check(strings.TrimSpace(r.Destination) != "", "destination", "must be provided")
	v.Check(r.DemandLevel == "" || validator.PermittedValue(r.DemandLevel, types.RiskLow, types.RiskMedium, types.RiskHigh),
		"demand_level", "must be one of low, medium, high")
}

func (r *FareEstimateRequest) ToModel() models.FareRequest {
	return models.FareRequest{
		Origin:      strings.TrimSpace(r.Origin),
		Destination: strings.TrimSpace(r.Destination),
		TimeOfDay:   r.TimeOfDay,
		DemandLevel: r.DemandLevel,
	}
}
