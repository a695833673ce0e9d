package dto

import (
	"strings"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/validator"
)

type SafetyAlertRequest struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

func (r *SafetyAlertRequest) Validate(v *validator.Validator) {
	v.Check(strings.TrimSpace(r.Category) != "", "category", "must be provided")
	v.Check(strings.TrimSpace(r.Summary) != "", "summary", "must be provided")
	v.Check(len(r.Summary) <= 1000, "summary", "must not be more than 1000 bytes long")
}

func (r *SafetyAlertRequest) ToModel() models.SafetyAlert {
	return models.SafetyAlert{
		Category: strings.TrimSpace(r.Category),
		Location: strings.TrimSpace(r.Location),
		Summary:  strings.TrimSpace(r.Summary),
	}
}

// NearbyQuery is parsed from the query string of the nearby kekes endpoint.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

func (q *NearbyQuery) Validate(v *validator.Validator) {
	v.Check(validator.ValidLatitude(q.Lat), "lat", "must be between -90 and 90")
	v.Check(validator.ValidLongitude(q.Lng), "lng", "must be between -180 and 180")
	v.Check(q.RadiusKm >= 0 && q.RadiusKm <= 100, "radius_km", "must be between 0 and 100")
	v.Check(q.Limit >= 0 && q.Limit <= 500, "limit", "must be between 0 and 500")
}

func (q *NearbyQuery) Point() models.Point {
	return models.Point{Lat: q.Lat, Lng: q.Lng}
}
