package dto

import (
	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/validator"
)

type StartTripRequest struct {
	PassengerID int64   `json:"passenger_id"`
	DriverID    int64   `json:"driver_id"`
	KekeID      *int64  `json:"keke_id,omitempty"`
	StartLat    float64 `json:"start_lat"`
	StartLng    float64 `json:"start_lng"`
}

func (r *StartTripRequest) Validate(v *validator.Validator) {
	v.Check(r.PassengerID > 0, "passenger_id", "must be a positive integer")
	v.Check(r.DriverID > 0, "driver_id", "must be a positive integer")
	v.Check(r.PassengerID != r.DriverID, "driver_id", "must differ from passenger_id")
	v.Check(r.KekeID == nil || *r.KekeID > 0, "keke_id", "must be a positive integer")
	v.Check(validator.ValidLatitude(r.StartLat), "start_lat", "must be between -90 and 90")
	v.Check(validator.ValidLongitude(r.StartLng), "start_lng", "must be between -180 and 180")
}

func (r *StartTripRequest) ToModel() models.Trip {
	return models.Trip{
		PassengerID: r.PassengerID,
		DriverID:    r.DriverID,
		KekeID:      r.KekeID,
		Start:       models.Point{Lat: r.StartLat, Lng: r.StartLng},
	}
}

type CompleteTripRequest struct {
	TripID      int64   `json:"trip_id"`
	EndLat      float64 `json:"end_lat"`
	EndLng      float64 `json:"end_lng"`
	Fare        float64 `json:"fare"`
	Distance    float64 `json:"distance"`
	SafetyScore *int    `json:"safety_score,omitempty"`
}

func (r *CompleteTripRequest) Validate(v *validator.Validator) {
	v.Check(r.TripID > 0, "trip_id", "must be a positive integer")
	v.Check(validator.ValidLatitude(r.EndLat), "end_lat", "must be between -90 and 90")
	v.Check(validator.ValidLongitude(r.EndLng), "end_lng", "must be between -180 and 180")
	v.Check(validator.Finite(r.Fare) && r.Fare >= 0, "fare", "must not be negative")
	v.Check(validator.Finite(r.Distance) && r.Distance >= 0, "distance", "must not be negative")
	v.Check(r.SafetyScore == nil || (*r.SafetyScore >= 0 && *r.SafetyScore <= 100),
		"safety_score", "must be between 0 and 100")
}

func (r *CompleteTripRequest) ToModel() models.TripCompletion {
	return models.TripCompletion{
		TripID:      r.TripID,
		End:         models.Point{Lat: r.EndLat, Lng: r.EndLng},
		Fare:        r.Fare,
		DistanceKm:  r.Distance,
		SafetyScore: r.SafetyScore,
	}
}
