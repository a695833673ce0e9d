package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/jackc/pgx/v5"
)

type DriverStatsRepo struct {
	db Querier
}

func NewDriverStatsRepo(db Querier) *DriverStatsRepo {
	return &DriverStatsRepo{db: db}
}

// DriverStats returns trip and report counters for every registered driver.
func (r *DriverStatsRepo) DriverStats(ctx context.Context) (_ []models.DriverStat, err error) {
	const op = "DriverStatsRepo.DriverStats"
	defer func(start time.Time) { observe("select_driver_stats", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
		SELECT
			u.id,
			u.name,
			COALESCE(u.phone, ''),
			COUNT(t.id),
			COALESCE(AVG(t.safety_score), 0)::float8,
			(SELECT COUNT(*) FROM reports rep WHERE rep.user_id = u.id AND rep.risk_level = $2)
		FROM users u
		LEFT JOIN trips t ON t.driver_id = u.id
		WHERE u.role = $1
		GROUP BY u.id, u.name, u.phone
		ORDER BY u.id
	`, types.RoleDriver, types.RiskHigh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DriverStat, error) {
		var s models.DriverStat
		err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.TotalTrips, &s.AvgSafetyScore, &s.HighRiskReports)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
