package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/kekelink/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/validator"
)

type TripService interface {
	StartTrip(ctx context.Context, trip models.Trip) (models.Trip, error)
	CompleteTrip(ctx context.Context, c models.TripCompletion) (models.Trip, error)
}

type Trips struct {
	s TripService
	l logger.Logger
}

func NewTrips(s TripService, l logger.Logger) *Trips {
	return &Trips{
		s: s,
		l: l,
	}
}

// StartTrip godoc
// @Summary      Start a trip
// @Description  Opens an active trip. Passenger and driver rows are created on first sight.
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        trip  body      dto.StartTripRequest  true  "Trip"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /api/trips/start [post]
func (h *Trips) StartTrip(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionStartTrip)

	var req dto.StartTripRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	trip, err := h.s.StartTrip(ctx, req.ToModel())
	if err != nil {
		if IsOneOf(err, types.ErrUnknownKeke) {
			failedValidationResponse(w, map[string]string{"keke_id": "keke does not exist"})
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start trip", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"id": trip.ID, "status": trip.Status}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// CompleteTrip godoc
// @Summary      Complete a trip
// @Description  Closes an active trip with its end point, fare, distance and safety score
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        trip  body      dto.CompleteTripRequest  true  "Completion"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /api/trips/complete [post]
func (h *Trips) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCompleteTrip)

	var req dto.CompleteTripRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	trip, err := h.s.CompleteTrip(ctx, req.ToModel())
	if err != nil {
		if IsOneOf(err, types.ErrNotFound, types.ErrTripNotActive) {
			h.l.Debug(ctx, "trip not completable", "trip_id", req.TripID, "error", err)
		} else {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to complete trip", err)
		}
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"id": trip.ID, "success": true}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
