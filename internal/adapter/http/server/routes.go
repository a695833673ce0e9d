package server

import (
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	scopeReports = "reports"
	scopeFares   = "fares"
	scopeTrips   = "trips"
)

func (a *API) setupRoutes() {
	// System
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)
	a.mux.Handle("GET /metrics", promhttp.Handler())
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Realtime
	a.mux.HandleFunc("GET /ws", a.routes.ws.ServeWS)

	a.setupReportRoutes()
	a.setupTripRoutes()
	a.setupAdminRoutes()
}

func (a *API) setupReportRoutes() {
	r, m := a.routes.reports, a.m

	a.mux.Handle("POST /api/reports/safety", m.RateLimit(scopeReports, r.SubmitSafetyReport))
	a.mux.HandleFunc("GET /api/reports/hotspots", r.Hotspots)
	a.mux.Handle("POST /api/reports/route-feedback", m.RateLimit(scopeReports, r.SubmitRouteFeedback))
	a.mux.HandleFunc("GET /api/reports/route-intelligence", r.RouteIntelligence)
	a.mux.Handle("POST /api/fares/estimate", m.RateLimit(scopeFares, r.EstimateFare))
}

func (a *API) setupTripRoutes() {
	t, m := a.routes.trips, a.m

	a.mux.Handle("POST /api/trips/start", m.RateLimit(scopeTrips, t.StartTrip))
	a.mux.Handle("POST /api/trips/complete", m.RateLimit(scopeTrips, t.CompleteTrip))
}

func (a *API) setupAdminRoutes() {
	h, m := a.routes.admin, a.m

	a.mux.Handle("GET /api/admin/safety-analytics", m.RequireRoles(h.SafetyAnalytics, types.RoleAdmin))
	a.mux.Handle("GET /api/admin/driver-stats", m.RequireRoles(h.DriverStats, types.RoleAdmin))
	a.mux.Handle("GET /api/admin/kekes/live", m.RequireRoles(h.LiveKekes, types.RoleAdmin))
	a.mux.Handle("GET /api/admin/kekes/nearby", m.RequireRoles(h.NearbyKekes, types.RoleAdmin))
	a.mux.Handle("POST /api/admin/alerts/safety", m.RequireRoles(h.SendSafetyAlert, types.RoleAdmin))
}
