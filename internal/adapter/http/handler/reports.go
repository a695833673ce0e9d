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

type SafetyService interface {
	SubmitSafetyReport(ctx context.Context, report models.SafetyReport) (models.SafetyReport, error)
	Hotspots(ctx context.Context) ([]models.Hotspot, error)
	SubmitRouteFeedback(ctx context.Context, fb models.RouteFeedback) (models.RouteFeedback, error)
	RouteIntelligence(ctx context.Context) ([]models.RouteFeedback, error)
	EstimateFare(ctx context.Context, req models.FareRequest) models.FareQuote
}

type Reports struct {
	s SafetyService
	l logger.Logger
}

func NewReports(s SafetyService, l logger.Logger) *Reports {
	return &Reports{
		s: s,
		l: l,
	}
}

// SubmitSafetyReport godoc
// @Summary      File a safety report
// @Description  Stores the report. A missing risk level is filled in by the scoring service; high-risk reports are pushed to every connected client.
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        report  body      dto.SafetyReportRequest  true  "Safety report"
// @Success      201     {object}  map[string]any
// @Failure      400     {object}  map[string]string
// @Failure      422     {object}  map[string]any
// @Router       /api/reports/safety [post]
func (h *Reports) SubmitSafetyReport(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionSubmitSafetyReport)

	var req dto.SafetyReportRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Debug(ctx, "bad safety report body", "error", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	report, err := h.s.SubmitSafetyReport(ctx, req.ToModel())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store safety report", err)
		serviceErrorResponse(w, err)
		return
	}

	response := envelope{
		"id":         report.ID,
		"success":    true,
		"category":   report.Category,
		"risk_level": report.RiskLevel,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Hotspots godoc
// @Summary      Safety hotspots
// @Description  Safety reports of the last 24 hours grouped by location, category and risk level
// @Tags         Reports
// @Produce      json
// @Success      200  {array}   models.Hotspot
// @Router       /api/reports/hotspots [get]
func (h *Reports) Hotspots(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionGetHotspots)

	hotspots, err := h.s.Hotspots(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load hotspots", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, nonNil(hotspots), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// SubmitRouteFeedback godoc
// @Summary      Submit route feedback
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        feedback  body      dto.RouteFeedbackRequest  true  "Route feedback"
// @Success      201       {object}  map[string]any
// @Failure      422       {object}  map[string]any
// @Router       /api/reports/route-feedback [post]
func (h *Reports) SubmitRouteFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRouteFeedback)

	var req dto.RouteFeedbackRequest
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

	fb, err := h.s.SubmitRouteFeedback(ctx, req.ToModel())
	if err != nil {
		if IsOneOf(err, types.ErrUnknownDriver) {
			failedValidationResponse(w, map[string]string{"driver_id": "driver does not exist"})
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store route feedback", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"id": fb.ID, "success": true}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// RouteIntelligence godoc
// @Summary      Latest route feedback
// @Description  The 100 most recent route feedback entries, newest first
// @Tags         Reports
// @Produce      json
// @Success      200  {array}   models.RouteFeedback
// @Router       /api/reports/route-intelligence [get]
func (h *Reports) RouteIntelligence(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRouteIntelligence)

	rows, err := h.s.RouteIntelligence(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load route feedback", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, nonNil(rows), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// EstimateFare godoc
// @Summary      Estimate a fare
// @Description  Prices a trip through the scoring service; a fixed fallback quote is returned when it is unavailable
// @Tags         Fares
// @Accept       json
// @Produce      json
// @Param        trip  body      dto.FareEstimateRequest  true  "Trip"
// @Success      200   {object}  models.FareQuote
// @Failure      422   {object}  map[string]any
// @Router       /api/fares/estimate [post]
func (h *Reports) EstimateFare(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionFareEstimate)

	var req dto.FareEstimateRequest
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

	quote := h.s.EstimateFare(ctx, req.ToModel())
	if err := writeJSON(w, http.StatusOK, quote, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// nonNil keeps empty results encoded as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
