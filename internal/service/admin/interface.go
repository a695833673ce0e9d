package admin

import (
	"context"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
)

type AnalyticsRepository interface {
	Analytics(ctx context.Context) (models.SafetyAnalytics, error)
}

type DriverStatsRepository interface {
	DriverStats(ctx context.Context) ([]models.DriverStat, error)
}

// LiveHub is the part of the realtime hub the admin surface reads from.
type LiveHub interface {
	Snapshot() []models.DriverLocation
	Stats() models.HubStats
	BroadcastSafetyAlert(ctx context.Context, alert models.SafetyAlert) int
}

// GeoIndex answers radius queries over live drivers. Optional.
type GeoIndex interface {
	Nearby(ctx context.Context, p models.Point, radiusKm float64, limit int) ([]models.NearbyDriver, error)
}
