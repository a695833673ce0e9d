package app

import (
	"context"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// unavailableReports stands in for the report tables when the database is
// disabled.
type unavailableReports struct{}

func (unavailableReports) Create(context.Context, models.SafetyReport) (models.SafetyReport, error) {
	return models.SafetyReport{}, types.ErrUnavailable
}

func (unavailableReports) Hotspots(context.Context, time.Time) ([]models.Hotspot, error) {
	return nil, types.ErrUnavailable
}

func (unavailableReports) Analytics(context.Context) (models.SafetyAnalytics, error) {
	return models.SafetyAnalytics{}, types.ErrUnavailable
}

func (unavailableReports) DriverStats(context.Context) ([]models.DriverStat, error) {
	return nil, types.ErrUnavailable
}

type unavailableFeedback struct{}

func (unavailableFeedback) Create(context.Context, models.RouteFeedback) (models.RouteFeedback, error) {
	return models.RouteFeedback{}, types.ErrUnavailable
}

func (unavailableFeedback) Latest(context.Context, int) ([]models.RouteFeedback, error) {
	return nil, types.ErrUnavailable
}

// unavailableTrips covers the trip and user tables.
type unavailableTrips struct{}

func (unavailableTrips) Create(context.Context, models.Trip) (models.Trip, error) {
	return models.Trip{}, types.ErrUnavailable
}

func (unavailableTrips) Complete(context.Context, models.TripCompletion) (models.Trip, error) {
	return models.Trip{}, types.ErrUnavailable
}

func (unavailableTrips) Ensure(context.Context, int64, types.UserRole) error {
	return types.ErrUnavailable
}

// directTx runs fn without a transaction; there is nothing to commit.
type directTx struct{}

func (directTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
