package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Temutjin2k/kekelink/config"
	"github.com/Temutjin2k/kekelink/internal/adapter/http/handler"
	"github.com/Temutjin2k/kekelink/internal/adapter/http/middleware"
	wshandler "github.com/Temutjin2k/kekelink/internal/adapter/http/ws"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.ServerConfig
	log  logger.Logger
}

type handlers struct {
	health  *handler.Health
	reports *handler.Reports
	trips   *handler.Trips
	admin   *handler.Admin
	ws      *wshandler.Handler
}

// Deps are the collaborators the HTTP surface is built on. Limiter may be nil.
type Deps struct {
	Hub     handler.HubStatser
	Safety  handler.SafetyService
	Trips   handler.TripService
	Admin   handler.AdminService
	WS      *wshandler.Handler
	Auth    middleware.TokenValidator
	Limiter middleware.RateLimiter
}

func New(cfg config.ServerConfig, serviceName string, deps Deps, log logger.Logger) (*API, error) {
	switch {
	case deps.Hub == nil || deps.WS == nil:
		return nil, errors.New("realtime hub is required")
	case deps.Safety == nil || deps.Trips == nil || deps.Admin == nil:
		return nil, errors.New("safety, trip and admin services are required")
	case deps.Auth == nil:
		return nil, errors.New("auth service is required")
	}

	proxies, err := cfg.Proxies()
	if err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health:  handler.NewHealth(serviceName, deps.Hub, log),
			reports: handler.NewReports(deps.Safety, log),
			trips:   handler.NewTrips(deps.Trips, log),
			admin:   handler.NewAdmin(deps.Admin, log),
			ws:      deps.WS,
		},
		m:    middleware.NewMiddleware(deps.Auth, deps.Limiter, proxies, log),
		addr: cfg.Addr(),
		cfg:  cfg,
		log:  log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(serviceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return api, nil
}

// Handler exposes the full middleware chain, mainly for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownTimeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, types.ActionServerShutdown)

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run listens in the background; listen and serve failures are sent to errCh.
func (a *API) Run(ctx context.Context, errCh chan<- error) {
	ctx = wrap.WithAction(ctx, types.ActionServerStarted)

	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		errCh <- fmt.Errorf("failed to listen on %s: %w", a.addr, err)
		return
	}

	go func() {
		a.log.Info(ctx, "started http server", "address", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()
}

func (a *API) withMiddleware(serviceName string) http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(serviceName)(a.m.Logging(a.m.Auth(a.mux)))))
}
