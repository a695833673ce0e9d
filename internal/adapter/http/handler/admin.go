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

type AdminService interface {
	SafetyAnalytics(ctx context.Context) (models.SafetyAnalytics, error)
	DriverStats(ctx context.Context) ([]models.DriverStat, error)
	LiveKekes(ctx context.Context) models.LiveKekes
	NearbyKekes(ctx context.Context, p models.Point, radiusKm float64, limit int) ([]models.NearbyDriver, error)
	SendSafetyAlert(ctx context.Context, alert models.SafetyAlert) int
}

type Admin struct {
	s AdminService
	l logger.Logger
}

func NewAdmin(s AdminService, l logger.Logger) *Admin {
	return &Admin{
		s: s,
		l: l,
	}
}

// SafetyAnalytics godoc
// @Summary      Safety analytics
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.SafetyAnalytics
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/safety-analytics [get]
func (h *Admin) SafetyAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionSafetyAnalytics)

	res, err := h.s.SafetyAnalytics(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to build safety analytics", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, res, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// DriverStats godoc
// @Summary      Per-driver statistics
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.DriverStat
// @Router       /api/admin/driver-stats [get]
func (h *Admin) DriverStats(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionDriverStats)

	stats, err := h.s.DriverStats(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load driver stats", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, nonNil(stats), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// LiveKekes godoc
// @Summary      Live kekes
// @Description  Drivers currently reporting their position to this server, plus connection counters
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.LiveKekes
// @Router       /api/admin/kekes/live [get]
func (h *Admin) LiveKekes(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionLiveKekes)

	live := h.s.LiveKekes(ctx)
	live.Drivers = nonNil(live.Drivers)

	if err := writeJSON(w, http.StatusOK, live, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// NearbyKekes godoc
// @Summary      Kekes near a point
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        lat        query     number   true   "Latitude"
// @Param        lng        query     number   true   "Longitude"
// @Param        radius_km  query     number   false  "Radius in km (default 5)"
// @Param        limit      query     integer  false  "Maximum results (default 50)"
// @Success      200        {array}   models.NearbyDriver
// @Failure      422        {object}  map[string]any
// @Router       /api/admin/kekes/nearby [get]
func (h *Admin) NearbyKekes(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionNearbyKekes)

	v := validator.New()
	qs := r.URL.Query()

	v.Check(qs.Get("lat") != "", "lat", "must be provided")
	v.Check(qs.Get("lng") != "", "lng", "must be provided")
	q := dto.NearbyQuery{
		Lat:      readFloat(qs, "lat", 0, v),
		Lng:      readFloat(qs, "lng", 0, v),
		RadiusKm: readFloat(qs, "radius_km", 0, v),
		Limit:    readInt(qs, "limit", 0, v),
	}
	q.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	found, err := h.s.NearbyKekes(ctx, q.Point(), q.RadiusKm, q.Limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to query nearby kekes", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, nonNil(found), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// SendSafetyAlert godoc
// @Summary      Broadcast a safety alert
// @Description  Pushes a safety_alert to every connected client
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        alert  body      dto.SafetyAlertRequest  true  "Alert"
// @Success      202    {object}  map[string]any
// @Failure      422    {object}  map[string]any
// @Router       /api/admin/alerts/safety [post]
func (h *Admin) SendSafetyAlert(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionManualSafetyAlert)

	var req dto.SafetyAlertRequest
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

	delivered := h.s.SendSafetyAlert(ctx, req.ToModel())
	if err := writeJSON(w, http.StatusAccepted, envelope{"delivered": delivered}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
