package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

type RouteFeedbackRepo struct {
	db Querier
}

func NewRouteFeedbackRepo(db Querier) *RouteFeedbackRepo {
	return &RouteFeedbackRepo{db: db}
}

func (r *RouteFeedbackRepo) Create(ctx context.Context, fb models.RouteFeedback) (_ models.RouteFeedback, err error) {
	const op = "RouteFeedbackRepo.Create"
	defer func(start time.Time) { observe("insert_route_feedback", start, err) }(time.Now())

	err = txOrDB(ctx, r.db).QueryRow(ctx, `
		INSERT INTO route_feedback (driver_id, route_name, origin, destination, rating, comments, safety_concerns, traffic_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`,
		fb.DriverID,
		fb.RouteName,
		fb.Origin,
		fb.Destination,
		fb.Rating,
		fb.Comments,
		fb.SafetyConcerns,
		fb.TrafficLevel,
	).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return models.RouteFeedback{}, fmt.Errorf("%s: driver %d: %w", op, fb.DriverID, types.ErrUnknownDriver)
		}
		return models.RouteFeedback{}, fmt.Errorf("%s: %w", op, err)
	}
	return fb, nil
}

// Latest returns the newest feedback rows first.
func (r *RouteFeedbackRepo) Latest(ctx context.Context, limit int) (_ []models.RouteFeedback, err error) {
	const op = "RouteFeedbackRepo.Latest"
	defer func(start time.Time) { observe("select_route_feedback", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
		SELECT id, driver_id, route_name, origin, destination, rating, comments, safety_concerns, traffic_level, created_at
		FROM route_feedback
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RouteFeedback, error) {
		var fb models.RouteFeedback
		err := row.Scan(
			&fb.ID,
			&fb.DriverID,
			&fb.RouteName,
			&fb.Origin,
			&fb.Destination,
			&fb.Rating,
			&fb.Comments,
			&fb.SafetyConcerns,
			&fb.TrafficLevel,
			&fb.CreatedAt,
		)
		return fb, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
