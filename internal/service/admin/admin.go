package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/internal/service/hub"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

const (
	DefaultNearbyRadiusKm = hub.SOSRadiusKm
	DefaultNearbyLimit    = 50
)

type AdminService struct {
	analytics AnalyticsRepository
	drivers   DriverStatsRepository
	hub       LiveHub
	geo       GeoIndex
	l         logger.Logger
}

// NewAdminService builds the admin service. geo may be nil, in which case
// nearby queries are answered from the hub's own driver table.
func NewAdminService(analytics AnalyticsRepository, drivers DriverStatsRepository, h LiveHub, geo GeoIndex, l logger.Logger) *AdminService {
	return &AdminService{
		analytics: analytics,
		drivers:   drivers,
		hub:       h,
		geo:       geo,
		l:         l,
	}
}

func (s *AdminService) SafetyAnalytics(ctx context.Context) (models.SafetyAnalytics, error) {
	const op = "AdminService.SafetyAnalytics"
	ctx = wrap.WithAction(ctx, types.ActionSafetyAnalytics)

	res, err := s.analytics.Analytics(ctx)
	if err != nil {
		return models.SafetyAnalytics{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return res, nil
}

func (s *AdminService) DriverStats(ctx context.Context) ([]models.DriverStat, error) {
	const op = "AdminService.DriverStats"
	ctx = wrap.WithAction(ctx, types.ActionDriverStats)

	stats, err := s.drivers.DriverStats(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return stats, nil
}

func (s *AdminService) LiveKekes(ctx context.Context) models.LiveKekes {
	ctx = wrap.WithAction(ctx, types.ActionLiveKekes)

	live := models.LiveKekes{Drivers: s.hub.Snapshot(), Stats: s.hub.Stats()}
	s.l.Debug(ctx, "live kekes read", "drivers", len(live.Drivers), "connections", live.Stats.Connections)
	return live
}

// NearbyKekes lists drivers within radiusKm of p, closest first. The geo
// index is asked first; on error or when it is not configured the hub's
// in-memory table is scanned instead.
func (s *AdminService) NearbyKekes(ctx context.Context, p models.Point, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	const op = "AdminService.NearbyKekes"
	ctx = wrap.WithAction(ctx, types.ActionNearbyKekes)

	if !hub.ValidPoint(p) {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrInvalidCoordinates))
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	if s.geo != nil {
		found, err := s.geo.Nearby(ctx, p, radiusKm, limit)
		if err == nil {
			return found, nil
		}
		s.l.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "geo index query failed, scanning hub", "error", err)
	}

	return nearbyFromSnapshot(s.hub.Snapshot(), p, radiusKm, limit), nil
}

// SendSafetyAlert pushes a manual alert to every connected client.
func (s *AdminService) SendSafetyAlert(ctx context.Context, alert models.SafetyAlert) int {
	ctx = wrap.WithAction(ctx, types.ActionManualSafetyAlert)

	delivered := s.hub.BroadcastSafetyAlert(ctx, alert)
	s.l.Info(ctx, "manual safety alert sent", "category", alert.Category, "delivered", delivered)
	return delivered
}

func nearbyFromSnapshot(drivers []models.DriverLocation, p models.Point, radiusKm float64, limit int) []models.NearbyDriver {
	out := make([]models.NearbyDriver, 0, len(drivers))
	for _, d := range drivers {
		dist := hub.DistanceKm(p, d.Point())
		if dist > radiusKm {
			continue
		}
		out = append(out, models.NearbyDriver{DriverLocation: d, DistanceKm: dist})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
