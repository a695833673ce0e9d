package safety

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

const (
	HotspotWindow      = 24 * time.Hour
	RouteFeedbackLimit = 100
)

type Service struct {
	reports  ReportRepo
	feedback RouteFeedbackRepo
	trips    TripRepo
	users    UserRepo
	trm      TxManager
	scorer   Scorer
	alerts   AlertBroadcaster
	now      func() time.Time
	l        logger.Logger
}

func NewService(reports ReportRepo, feedback RouteFeedbackRepo, trips TripRepo, users UserRepo, trm TxManager, scorer Scorer, alerts AlertBroadcaster, l logger.Logger) *Service {
	return &Service{
		reports:  reports,
		feedback: feedback,
		trips:    trips,
		users:    users,
		trm:      trm,
		scorer:   scorer,
		alerts:   alerts,
		now:      time.Now,
		l:        l,
	}
}

// SubmitSafetyReport stores report, asking the scorer for category and risk
// when the reporter left the risk level out. High-risk reports are broadcast
// to every connected client once stored.
func (s *Service) SubmitSafetyReport(ctx context.Context, report models.SafetyReport) (models.SafetyReport, error) {
	const op = "SafetyService.SubmitSafetyReport"
	ctx = wrap.WithAction(ctx, types.ActionSubmitSafetyReport)

	if report.Type == "" {
		report.Type = types.ReportSafety
	}

	if report.RiskLevel == "" {
		c := s.scorer.Classify(ctx, report.Content)
		report.RiskLevel = c.RiskLevel
		if report.Category == "" {
			report.Category = c.Category
		}
		s.l.Debug(ctx, "report classified", "category", report.Category, "risk", report.RiskLevel)
	}

	saved, err := s.reports.Create(ctx, report)
	if err != nil {
		return models.SafetyReport{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if saved.IsHighRisk() {
		delivered := s.alerts.BroadcastSafetyAlert(ctx, models.SafetyAlert{
			Category: saved.Category,
			Location: saved.Location,
			Summary:  saved.Content,
		})
		s.l.Warn(ctx, "high risk report broadcast", "report_id", saved.ID, "delivered", delivered)
	}

	return saved, nil
}

// Hotspots groups the safety reports of the last 24 hours.
func (s *Service) Hotspots(ctx context.Context) ([]models.Hotspot, error) {
	const op = "SafetyService.Hotspots"
	ctx = wrap.WithAction(ctx, types.ActionGetHotspots)

	hotspots, err := s.reports.Hotspots(ctx, s.now().Add(-HotspotWindow))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return hotspots, nil
}

func (s *Service) SubmitRouteFeedback(ctx context.Context, fb models.RouteFeedback) (models.RouteFeedback, error) {
	const op = "SafetyService.SubmitRouteFeedback"
	ctx = wrap.WithAction(ctx, types.ActionRouteFeedback)

	var saved models.RouteFeedback
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.users.Ensure(ctx, fb.DriverID, types.RoleDriver); err != nil {
			return err
		}
		var err error
		saved, err = s.feedback.Create(ctx, fb)
		return err
	})
	if err != nil {
		return models.RouteFeedback{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "route feedback stored", "feedback_id", saved.ID, "driver_id", saved.DriverID, "route", saved.RouteName)
	return saved, nil
}

// StartTrip opens an active trip, creating the passenger and driver rows on
// first sight.
func (s *Service) StartTrip(ctx context.Context, trip models.Trip) (models.Trip, error) {
	const op = "SafetyService.StartTrip"
	ctx = wrap.WithAction(ctx, types.ActionStartTrip)

	trip.Status = types.TripActive

	var saved models.Trip
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.users.Ensure(ctx, trip.PassengerID, types.RolePassenger); err != nil {
			return err
		}
		if err := s.users.Ensure(ctx, trip.DriverID, types.RoleDriver); err != nil {
			return err
		}
		var err error
		saved, err = s.trips.Create(ctx, trip)
		return err
	})
	if err != nil {
		return models.Trip{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "trip started", "trip_id", saved.ID, "driver_id", saved.DriverID, "passenger_id", saved.PassengerID)
	return saved, nil
}

// CompleteTrip records the end of an active trip.
func (s *Service) CompleteTrip(ctx context.Context, c models.TripCompletion) (models.Trip, error) {
	const op = "SafetyService.CompleteTrip"
	ctx = wrap.WithAction(ctx, types.ActionCompleteTrip)

	trip, err := s.trips.Complete(ctx, c)
	if err != nil {
		return models.Trip{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Info(ctx, "trip completed", "trip_id", trip.ID, "driver_id", trip.DriverID, "fare", c.Fare)
	return trip, nil
}

// RouteIntelligence returns the newest route feedback, newest first.
func (s *Service) RouteIntelligence(ctx context.Context) ([]models.RouteFeedback, error) {
	const op = "SafetyService.RouteIntelligence"
	ctx = wrap.WithAction(ctx, types.ActionRouteIntelligence)

	rows, err := s.feedback.Latest(ctx, RouteFeedbackLimit)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return rows, nil
}

func (s *Service) EstimateFare(ctx context.Context, req models.FareRequest) models.FareQuote {
	ctx = wrap.WithAction(ctx, types.ActionFareEstimate)
	if req.DemandLevel == "" {
		req.DemandLevel = types.RiskMedium
	}
	return s.scorer.Price(ctx, req)
}

// HandleIncident receives a classified incident from the alert bus. Only
// high-risk incidents reach the clients.
func (s *Service) HandleIncident(ctx context.Context, ev models.IncidentEvent) error {
	ctx = wrap.WithAction(ctx, types.ActionIncidentReceived)

	if ev.RiskLevel != types.RiskHigh {
		s.l.Debug(ctx, "incident below broadcast threshold", "category", ev.Category, "risk", ev.RiskLevel)
		return nil
	}

	delivered := s.alerts.BroadcastSafetyAlert(ctx, ev.SafetyAlert())
	s.l.Info(ctx, "incident broadcast", "category", ev.Category, "location", ev.Location, "delivered", delivered)
	return nil
}
