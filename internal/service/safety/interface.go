package safety

import (
	"context"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

type ReportRepo interface {
	Create(ctx context.Context, report models.SafetyReport) (models.SafetyReport, error)
	Hotspots(ctx context.Context, since time.Time) ([]models.Hotspot, error)
}

type RouteFeedbackRepo interface {
	Create(ctx context.Context, fb models.RouteFeedback) (models.RouteFeedback, error)
	Latest(ctx context.Context, limit int) ([]models.RouteFeedback, error)
}

type TripRepo interface {
	Create(ctx context.Context, trip models.Trip) (models.Trip, error)
	Complete(ctx context.Context, c models.TripCompletion) (models.Trip, error)
}

// UserRepo provisions user rows for identities issued elsewhere.
type UserRepo interface {
	Ensure(ctx context.Context, id int64, role types.UserRole) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Scorer is the external classification and pricing service. It never fails:
// implementations answer with a static fallback instead.
type Scorer interface {
	Classify(ctx context.Context, content string) models.Classification
	Price(ctx context.Context, req models.FareRequest) models.FareQuote
}

type AlertBroadcaster interface {
	BroadcastSafetyAlert(ctx context.Context, alert models.SafetyAlert) int
}
