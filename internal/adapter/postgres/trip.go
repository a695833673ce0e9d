package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

type TripRepo struct {
	db Querier
}

func NewTripRepo(db Querier) *TripRepo {
	return &TripRepo{db: db}
}

// Create inserts trip as given. Passenger and driver rows must exist, so a
// foreign key failure points at the keke.
func (r *TripRepo) Create(ctx context.Context, trip models.Trip) (_ models.Trip, err error) {
	const op = "TripRepo.Create"
	defer func(start time.Time) { observe("insert_trip", start, err) }(time.Now())

	err = txOrDB(ctx, r.db).QueryRow(ctx, `
		INSERT INTO trips (passenger_id, driver_id, keke_id, start_lat, start_lng, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		trip.PassengerID,
		trip.DriverID,
		trip.KekeID,
		trip.Start.Lat,
		trip.Start.Lng,
		trip.Status,
	).Scan(&trip.ID, &trip.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return models.Trip{}, fmt.Errorf("%s: keke %v: %w", op, trip.KekeID, types.ErrUnknownKeke)
		}
		return models.Trip{}, fmt.Errorf("%s: %w", op, err)
	}
	return trip, nil
}

// Complete closes an active trip. A missing trip is ErrNotFound, one that is
// not active any more is ErrTripNotActive.
func (r *TripRepo) Complete(ctx context.Context, c models.TripCompletion) (_ models.Trip, err error) {
	const op = "TripRepo.Complete"
	defer func(start time.Time) { observe("complete_trip", start, err) }(time.Now())

	db := txOrDB(ctx, r.db)

	var (
		trip        models.Trip
		completedAt time.Time
	)
	err = db.QueryRow(ctx, `
		UPDATE trips
		SET end_lat = $2, end_lng = $3, fare = $4, distance = $5, safety_score = $6,
			status = $7, completed_at = now()
		WHERE id = $1 AND status = $8
		RETURNING id, COALESCE(passenger_id, 0), COALESCE(driver_id, 0), keke_id,
			COALESCE(start_lat, 0), COALESCE(start_lng, 0), created_at, completed_at
	`,
		c.TripID,
		c.End.Lat,
		c.End.Lng,
		c.Fare,
		c.DistanceKm,
		c.SafetyScore,
		types.TripCompleted,
		types.TripActive,
	).Scan(
		&trip.ID,
		&trip.PassengerID,
		&trip.DriverID,
		&trip.KekeID,
		&trip.Start.Lat,
		&trip.Start.Lng,
		&trip.CreatedAt,
		&completedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		var status types.TripStatus
		lookupErr := db.QueryRow(ctx, `SELECT status FROM trips WHERE id = $1`, c.TripID).Scan(&status)
		switch {
		case errors.Is(lookupErr, pgx.ErrNoRows):
			return models.Trip{}, fmt.Errorf("%s: trip %d: %w", op, c.TripID, types.ErrNotFound)
		case lookupErr != nil:
			return models.Trip{}, fmt.Errorf("%s: %w", op, lookupErr)
		default:
			return models.Trip{}, fmt.Errorf("%s: trip %d is %s: %w", op, c.TripID, status, types.ErrTripNotActive)
		}
	}
	if err != nil {
		return models.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	end, fare, dist := c.End, c.Fare, c.DistanceKm
	trip.End, trip.Fare, trip.DistanceKm = &end, &fare, &dist
	trip.SafetyScore = c.SafetyScore
	trip.Status = types.TripCompleted
	trip.CompletedAt = &completedAt
	return trip, nil
}
