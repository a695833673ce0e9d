package models

import (
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// Trip is one keke ride between a passenger and a driver.
type Trip struct {
	ID          int64            `json:"id"`
	PassengerID int64            `json:"passenger_id"`
	DriverID    int64            `json:"driver_id"`
	KekeID      *int64           `json:"keke_id,omitempty"`
	Start       Point            `json:"start"`
	End         *Point           `json:"end,omitempty"`
	Fare        *float64         `json:"fare,omitempty"`
	DistanceKm  *float64         `json:"distance,omitempty"`
	SafetyScore *int             `json:"safety_score,omitempty"`
	Status      types.TripStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// TripCompletion closes an active trip.
type TripCompletion struct {
	TripID      int64
	End         Point
	Fare        float64
	DistanceKm  float64
	SafetyScore *int
}
