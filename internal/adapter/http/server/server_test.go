package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/kekelink/config"
	wshandler "github.com/Temutjin2k/kekelink/internal/adapter/http/ws"
	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/internal/service/auth"
	"github.com/Temutjin2k/kekelink/internal/service/hub"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	ws "github.com/Temutjin2k/kekelink/pkg/wsHub"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type stubSafety struct{}

func (stubSafety) SubmitSafetyReport(_ context.Context, r models.SafetyReport) (models.SafetyReport, error) {
	r.ID = 1
	return r, nil
}
func (stubSafety) Hotspots(context.Context) ([]models.Hotspot, error) { return nil, nil }
func (stubSafety) SubmitRouteFeedback(_ context.Context, fb models.RouteFeedback) (models.RouteFeedback, error) {
	return fb, nil
}
func (stubSafety) RouteIntelligence(context.Context) ([]models.RouteFeedback, error) { return nil, nil }
func (stubSafety) EstimateFare(context.Context, models.FareRequest) models.FareQuote {
	return models.FareQuote{TotalFare: 500}
}

type stubTrips struct{}

func (stubTrips) StartTrip(_ context.Context, trip models.Trip) (models.Trip, error) {
	trip.ID = 1
	trip.Status = types.TripActive
	return trip, nil
}
func (stubTrips) CompleteTrip(_ context.Context, c models.TripCompletion) (models.Trip, error) {
	return models.Trip{ID: c.TripID, Status: types.TripCompleted}, nil
}

type stubAdmin struct{ h *hub.Hub }

func (stubAdmin) SafetyAnalytics(context.Context) (models.SafetyAnalytics, error) {
	return models.SafetyAnalytics{}, nil
}
func (stubAdmin) DriverStats(context.Context) ([]models.DriverStat, error) { return nil, nil }
func (a stubAdmin) LiveKekes(context.Context) models.LiveKekes {
	return models.LiveKekes{Drivers: a.h.Snapshot(), Stats: a.h.Stats()}
}
func (stubAdmin) NearbyKekes(context.Context, models.Point, float64, int) ([]models.NearbyDriver, error) {
	return nil, nil
}
func (a stubAdmin) SendSafetyAlert(ctx context.Context, alert models.SafetyAlert) int {
	return a.h.BroadcastSafetyAlert(ctx, alert)
}

type testEnv struct {
	srv    *httptest.Server
	hub    *hub.Hub
	tokens *auth.TokenService
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	log := logger.Discard()

	h := hub.New(nil, nil, log)
	tokens, err := auth.NewTokenService("server-test", time.Hour, log)
	require.NoError(t, err)

	api, err := New(config.ServerConfig{Host: "127.0.0.1", Port: "0", ShutdownTimeout: time.Second}, "kekelink-test", Deps{
		Hub:    h,
		Safety: stubSafety{},
		Trips:  stubTrips{},
		Admin:  stubAdmin{h: h},
		WS:     wshandler.NewHandler(h, ws.Options{}, nil, log),
		Auth:   tokens,
	}, log)
	require.NoError(t, err)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { h.CloseAll(context.Background()) })

	return testEnv{srv: srv, hub: h, tokens: tokens}
}

func (e testEnv) token(t *testing.T, role types.UserRole) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(context.Background(), models.User{ID: 1, Name: "ops", Role: role})
	require.NoError(t, err)
	return tok
}

func (e testEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(config.ServerConfig{}, "x", Deps{}, logger.Discard())
	require.Error(t, err)
}

func TestPublicRoutes(t *testing.T) {
	env := newEnv(t)

	resp := env.get(t, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	require.Equal(t, http.StatusOK, env.get(t, "/api/reports/hotspots", "").StatusCode)
	require.Equal(t, http.StatusOK, env.get(t, "/metrics", "").StatusCode)
	require.Equal(t, http.StatusNotFound, env.get(t, "/api/unknown", "").StatusCode)
}

func TestTripRoutes(t *testing.T) {
	env := newEnv(t)

	resp, err := http.Post(env.srv.URL+"/api/trips/start", "application/json",
		strings.NewReader(`{"passenger_id":5001,"driver_id":7001,"start_lat":12.0,"start_lng":8.5}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(env.srv.URL+"/api/trips/complete", "application/json",
		strings.NewReader(`{"trip_id":1,"end_lat":12.01,"end_lng":8.6,"fare":400,"distance":3}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, http.StatusMethodNotAllowed, env.get(t, "/api/trips/start", "").StatusCode)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	env := newEnv(t)

	require.Equal(t, http.StatusUnauthorized, env.get(t, "/api/admin/kekes/live", "").StatusCode)
	require.Equal(t, http.StatusUnauthorized, env.get(t, "/api/admin/kekes/live", "garbage").StatusCode)
	require.Equal(t, http.StatusForbidden, env.get(t, "/api/admin/kekes/live", env.token(t, types.RoleDriver)).StatusCode)
	require.Equal(t, http.StatusOK, env.get(t, "/api/admin/kekes/live", env.token(t, types.RoleAdmin)).StatusCode)
}

func TestWebSocketThroughMiddleware(t *testing.T) {
	env := newEnv(t)
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"

	c, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool { return env.hub.Stats().Connections == 1 }, 2*time.Second, 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/admin/alerts/safety",
		strings.NewReader(`{"category":"flood","summary":"avoid Bompai road"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, types.RoleAdmin))
	alertResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	alertResp.Body.Close()
	require.Equal(t, http.StatusAccepted, alertResp.StatusCode)

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, c.ReadJSON(&msg))
	require.Equal(t, "safety_alert", msg["type"])
	require.Equal(t, "avoid Bompai road", msg["summary"])
}
