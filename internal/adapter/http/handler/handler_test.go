package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeSafety struct {
	reports  []models.SafetyReport
	feedback []models.RouteFeedback
	fares    []models.FareRequest
	err      error
}

func (f *fakeSafety) SubmitSafetyReport(_ context.Context, r models.SafetyReport) (models.SafetyReport, error) {
	if f.err != nil {
		return models.SafetyReport{}, f.err
	}
	r.ID = 5
	if r.RiskLevel == "" {
		r.RiskLevel = types.RiskMedium
	}
	f.reports = append(f.reports, r)
	return r, nil
}

func (f *fakeSafety) Hotspots(context.Context) ([]models.Hotspot, error) {
	return nil, f.err
}

func (f *fakeSafety) SubmitRouteFeedback(_ context.Context, fb models.RouteFeedback) (models.RouteFeedback, error) {
	if f.err != nil {
		return models.RouteFeedback{}, f.err
	}
	fb.ID = 8
	f.feedback = append(f.feedback, fb)
	return fb, nil
}

func (f *fakeSafety) RouteIntelligence(context.Context) ([]models.RouteFeedback, error) {
	return f.feedback, f.err
}

func (f *fakeSafety) EstimateFare(_ context.Context, req models.FareRequest) models.FareQuote {
	f.fares = append(f.fares, req)
	return models.FareQuote{BaseFare: 400, DemandMultiplier: 1.25, TotalFare: 500, Fallback: true}
}

type fakeAdmin struct {
	nearbyArgs []any
	alerts     []models.SafetyAlert
	err        error
}

func (f *fakeAdmin) SafetyAnalytics(context.Context) (models.SafetyAnalytics, error) {
	return models.SafetyAnalytics{TotalReports: 3}, f.err
}

func (f *fakeAdmin) DriverStats(context.Context) ([]models.DriverStat, error) {
	return nil, f.err
}

func (f *fakeAdmin) LiveKekes(context.Context) models.LiveKekes {
	return models.LiveKekes{Stats: models.HubStats{Connections: 2}}
}

func (f *fakeAdmin) NearbyKekes(_ context.Context, p models.Point, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	f.nearbyArgs = []any{p, radiusKm, limit}
	return nil, f.err
}

func (f *fakeAdmin) SendSafetyAlert(_ context.Context, a models.SafetyAlert) int {
	f.alerts = append(f.alerts, a)
	return 6
}

type fakeStats struct{}

func (fakeStats) Stats() models.HubStats { return models.HubStats{Connections: 4, Drivers: 1} }

func do(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	h := NewHealth("kekelink", fakeStats{}, logger.Discard())

	rec := do(h.HealthCheck, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "available", body["status"])
	require.EqualValues(t, 4, body["hub"].(map[string]any)["connections"])
}

func TestSubmitSafetyReport(t *testing.T) {
	svc := &fakeSafety{}
	h := NewReports(svc, logger.Discard())

	rec := do(h.SubmitSafetyReport, http.MethodPost, "/api/reports/safety",
		`{"user_id":2,"type":"safety_report","category":"hazard","content":"  open gutter  ","location":"Tarauni"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	require.EqualValues(t, 5, body["id"])
	require.Equal(t, true, body["success"])
	require.Equal(t, "medium", body["risk_level"])

	require.Len(t, svc.reports, 1)
	require.Equal(t, "open gutter", svc.reports[0].Content)
}

func TestSubmitSafetyReport_Rejections(t *testing.T) {
	h := NewReports(&fakeSafety{}, logger.Discard())

	rec := do(h.SubmitSafetyReport, http.MethodPost, "/api/reports/safety", `{"content":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.SubmitSafetyReport, http.MethodPost, "/api/reports/safety", `{"content":"x","surprise":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.SubmitSafetyReport, http.MethodPost, "/api/reports/safety", `{"content":"","risk_level":"extreme"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["error"].(map[string]any)
	require.Contains(t, errs, "content")
	require.Contains(t, errs, "risk_level")
}

func TestSubmitSafetyReport_StoreFailure(t *testing.T) {
	h := NewReports(&fakeSafety{err: errors.New("db down")}, logger.Discard())

	rec := do(h.SubmitSafetyReport, http.MethodPost, "/api/reports/safety", `{"content":"fight at the park"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "db down")
}

func TestHotspots_EmptyIsArray(t *testing.T) {
	h := NewReports(&fakeSafety{}, logger.Discard())

	rec := do(h.Hotspots, http.MethodGet, "/api/reports/hotspots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouteFeedback(t *testing.T) {
	svc := &fakeSafety{}
	h := NewReports(svc, logger.Discard())

	rec := do(h.SubmitRouteFeedback, http.MethodPost, "/api/reports/route-feedback",
		`{"driver_id":1,"route_name":"Zoo Road","rating":4,"traffic_level":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h.SubmitRouteFeedback, http.MethodPost, "/api/reports/route-feedback",
		`{"driver_id":1,"route_name":"Zoo Road","rating":9}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h.RouteIntelligence, http.MethodGet, "/api/reports/route-intelligence", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.RouteFeedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "Zoo Road", rows[0].RouteName)
}

func TestRouteFeedback_UnknownDriver(t *testing.T) {
	h := NewReports(&fakeSafety{err: types.ErrUnknownDriver}, logger.Discard())

	rec := do(h.SubmitRouteFeedback, http.MethodPost, "/api/reports/route-feedback",
		`{"driver_id":77,"route_name":"Zoo Road","rating":3}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "driver_id")
}

func TestEstimateFare(t *testing.T) {
	svc := &fakeSafety{}
	h := NewReports(svc, logger.Discard())

	rec := do(h.EstimateFare, http.MethodPost, "/api/fares/estimate", `{"origin":"Sabon Gari","destination":"BUK"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.EqualValues(t, 500, body["total_fare"])
	require.Equal(t, true, body["fallback"])

	rec = do(h.EstimateFare, http.MethodPost, "/api/fares/estimate", `{"origin":"Sabon Gari"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	svc := &fakeAdmin{}
	h := NewAdmin(svc, logger.Discard())

	rec := do(h.SafetyAnalytics, http.MethodGet, "/api/admin/safety-analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decode(t, rec)["totalReports"])

	rec = do(h.DriverStats, http.MethodGet, "/api/admin/driver-stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h.LiveKekes, http.MethodGet, "/api/admin/kekes/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{}, decode(t, rec)["drivers"])

	rec = do(h.SendSafetyAlert, http.MethodPost, "/api/admin/alerts/safety", `{"category":"flood","summary":"avoid Bompai road"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.EqualValues(t, 6, decode(t, rec)["delivered"])
	require.Len(t, svc.alerts, 1)
}

func TestAdminAnalytics_Failure(t *testing.T) {
	h := NewAdmin(&fakeAdmin{err: errors.New("db down")}, logger.Discard())

	rec := do(h.SafetyAnalytics, http.MethodGet, "/api/admin/safety-analytics", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNearbyKekes_Query(t *testing.T) {
	svc := &fakeAdmin{}
	h := NewAdmin(svc, logger.Discard())

	rec := do(h.NearbyKekes, http.MethodGet, "/api/admin/kekes/nearby?lat=12.0&lng=8.5&radius_km=3&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{models.Point{Lat: 12.0, Lng: 8.5}, 3.0, 10}, svc.nearbyArgs)

	rec = do(h.NearbyKekes, http.MethodGet, "/api/admin/kekes/nearby?lat=abc&lng=8.5", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h.NearbyKekes, http.MethodGet, "/api/admin/kekes/nearby?lng=8.5", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h.NearbyKekes, http.MethodGet, "/api/admin/kekes/nearby?lat=95&lng=8.5", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type fakeTrips struct {
	started   []models.Trip
	completed []models.TripCompletion
	err       error
}

func (f *fakeTrips) StartTrip(_ context.Context, trip models.Trip) (models.Trip, error) {
	if f.err != nil {
		return models.Trip{}, f.err
	}
	trip.ID = 31
	trip.Status = types.TripActive
	f.started = append(f.started, trip)
	return trip, nil
}

func (f *fakeTrips) CompleteTrip(_ context.Context, c models.TripCompletion) (models.Trip, error) {
	if f.err != nil {
		return models.Trip{}, f.err
	}
	f.completed = append(f.completed, c)
	return models.Trip{ID: c.TripID, Status: types.TripCompleted}, nil
}

func TestStartTrip(t *testing.T) {
	svc := &fakeTrips{}
	h := NewTrips(svc, logger.Discard())

	rec := do(h.StartTrip, http.MethodPost, "/api/trips/start",
		`{"passenger_id":5001,"driver_id":7001,"keke_id":1,"start_lat":12.0022,"start_lng":8.592}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":31,"status":"active"}`, rec.Body.String())

	require.Len(t, svc.started, 1)
	require.Equal(t, int64(7001), svc.started[0].DriverID)
	require.Equal(t, models.Point{Lat: 12.0022, Lng: 8.592}, svc.started[0].Start)
	require.NotNil(t, svc.started[0].KekeID)
}

func TestStartTrip_Rejections(t *testing.T) {
	cases := map[string]struct {
		body  string
		code  int
		field string
	}{
		"missing passenger": {`{"driver_id":7001,"start_lat":12,"start_lng":8}`, http.StatusUnprocessableEntity, "passenger_id"},
		"same user":         {`{"passenger_id":7,"driver_id":7,"start_lat":12,"start_lng":8}`, http.StatusUnprocessableEntity, "driver_id"},
		"bad latitude":      {`{"passenger_id":1,"driver_id":2,"start_lat":120,"start_lng":8}`, http.StatusUnprocessableEntity, "start_lat"},
		"unknown field":     {`{"passenger_id":1,"driver_id":2,"start_lat":12,"start_lng":8,"vip":true}`, http.StatusBadRequest, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeTrips{}
			rec := do(NewTrips(svc, logger.Discard()).StartTrip, http.MethodPost, "/api/trips/start", tc.body)
			require.Equal(t, tc.code, rec.Code)
			if tc.field != "" {
				require.Contains(t, rec.Body.String(), tc.field)
			}
			require.Empty(t, svc.started)
		})
	}
}

func TestStartTrip_UnknownKeke(t *testing.T) {
	h := NewTrips(&fakeTrips{err: types.ErrUnknownKeke}, logger.Discard())

	rec := do(h.StartTrip, http.MethodPost, "/api/trips/start",
		`{"passenger_id":1,"driver_id":2,"keke_id":99,"start_lat":12,"start_lng":8}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "keke_id")
}

func TestCompleteTrip(t *testing.T) {
	svc := &fakeTrips{}
	h := NewTrips(svc, logger.Discard())

	rec := do(h.CompleteTrip, http.MethodPost, "/api/trips/complete",
		`{"trip_id":31,"end_lat":12.01,"end_lng":8.6,"fare":650,"distance":4.2,"safety_score":91}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":31,"success":true}`, rec.Body.String())
	require.Len(t, svc.completed, 1)
	require.Equal(t, 4.2, svc.completed[0].DistanceKm)
	require.Equal(t, 91, *svc.completed[0].SafetyScore)

	rec = do(h.CompleteTrip, http.MethodPost, "/api/trips/complete",
		`{"trip_id":31,"end_lat":12.01,"end_lng":8.6,"fare":-1,"distance":4.2,"safety_score":140}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	require.Contains(t, body["error"], "fare")
	require.Contains(t, body["error"], "safety_score")
	require.Len(t, svc.completed, 1)
}

func TestCompleteTrip_ServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		code int
	}{
		"missing":    {types.ErrNotFound, http.StatusNotFound},
		"not active": {types.ErrTripNotActive, http.StatusConflict},
		"database":   {errors.New("connection reset"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewTrips(&fakeTrips{err: tc.err}, logger.Discard())
			rec := do(h.CompleteTrip, http.MethodPost, "/api/trips/complete",
				`{"trip_id":3,"end_lat":12,"end_lng":8,"fare":300,"distance":2}`)
			require.Equal(t, tc.code, rec.Code)
			require.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}
