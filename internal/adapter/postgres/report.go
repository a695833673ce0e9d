package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/jackc/pgx/v5"
)

const recentHighRiskLimit = 10

type ReportRepo struct {
	db Querier
}

func NewReportRepo(db Querier) *ReportRepo {
	return &ReportRepo{db: db}
}

// Create inserts r and returns it with id and created_at filled in.
func (r *ReportRepo) Create(ctx context.Context, report models.SafetyReport) (_ models.SafetyReport, err error) {
	const op = "ReportRepo.Create"
	defer func(start time.Time) { observe("insert_report", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, `
		INSERT INTO reports (user_id, trip_id, type, category, risk_level, content, location, audio_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`,
		nullableID(report.UserID),
		report.TripID,
		report.Type,
		report.Category,
		report.RiskLevel,
		report.Content,
		report.Location,
		report.AudioURL,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return models.SafetyReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return report, nil
}

// Hotspots groups safety reports created after since.
func (r *ReportRepo) Hotspots(ctx context.Context, since time.Time) (_ []models.Hotspot, err error) {
	const op = "ReportRepo.Hotspots"
	defer func(start time.Time) { observe("select_hotspots", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
		SELECT location, category, risk_level, COUNT(*)
		FROM reports
		WHERE type = $1 AND created_at > $2
		GROUP BY location, category, risk_level
		ORDER BY COUNT(*) DESC, location
	`, types.ReportSafety, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hotspots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Hotspot, error) {
		var h models.Hotspot
		err := row.Scan(&h.Location, &h.Category, &h.RiskLevel, &h.Count)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return hotspots, nil
}

// Analytics aggregates every report and route feedback row for the admin dashboard.
func (r *ReportRepo) Analytics(ctx context.Context) (_ models.SafetyAnalytics, err error) {
	const op = "ReportRepo.Analytics"
	defer func(start time.Time) { observe("select_analytics", start, err) }(time.Now())

	var out models.SafetyAnalytics

	if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&out.TotalReports); err != nil {
		return out, fmt.Errorf("%s: total: %w", op, err)
	}

	if out.ReportsByCategory, err = r.countBy(ctx, "category"); err != nil {
		return out, fmt.Errorf("%s: by category: %w", op, err)
	}
	if out.ReportsByRisk, err = r.countBy(ctx, "risk_level"); err != nil {
		return out, fmt.Errorf("%s: by risk: %w", op, err)
	}

	if out.RecentAnomalies, err = r.recentHighRisk(ctx); err != nil {
		return out, fmt.Errorf("%s: recent high risk: %w", op, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT route_name, AVG(rating)::float8, COUNT(*), COALESCE(string_agg(NULLIF(safety_concerns, ''), ','), '')
		FROM route_feedback
		GROUP BY route_name
		ORDER BY AVG(rating) ASC, route_name
	`)
	if err != nil {
		return out, fmt.Errorf("%s: route risk: %w", op, err)
	}
	out.RouteRisk, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RouteRisk, error) {
		var rr models.RouteRisk
		err := row.Scan(&rr.RouteName, &rr.AvgRating, &rr.FeedbackCount, &rr.Concerns)
		return rr, err
	})
	if err != nil {
		return out, fmt.Errorf("%s: route risk: %w", op, err)
	}

	return out, nil
}

// countBy groups reports by one of a fixed set of columns.
func (r *ReportRepo) countBy(ctx context.Context, column string) ([]models.CountByKey, error) {
	var query string
	switch column {
	case "category":
		query = `SELECT category, COUNT(*) FROM reports GROUP BY category ORDER BY COUNT(*) DESC, category`
	case "risk_level":
		query = `SELECT risk_level, COUNT(*) FROM reports GROUP BY risk_level ORDER BY COUNT(*) DESC, risk_level`
	default:
		return nil, fmt.Errorf("unsupported group column %q", column)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CountByKey, error) {
		var c models.CountByKey
		err := row.Scan(&c.Key, &c.Count)
		return c, err
	})
}

func (r *ReportRepo) recentHighRisk(ctx context.Context) ([]models.SafetyReport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(user_id, 0), trip_id, type, category, risk_level, content, location, audio_url, created_at
		FROM reports
		WHERE type = $1 AND risk_level = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, types.ReportSafety, types.RiskHigh, recentHighRiskLimit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanReport)
}

func scanReport(row pgx.CollectableRow) (models.SafetyReport, error) {
	var rep models.SafetyReport
	err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.TripID,
		&rep.Type,
		&rep.Category,
		&rep.RiskLevel,
		&rep.Content,
		&rep.Location,
		&rep.AudioURL,
		&rep.CreatedAt,
	)
	return rep, err
}

// nullableID stores anonymous reports (id 0) as NULL.
func nullableID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
