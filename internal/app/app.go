package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Temutjin2k/kekelink/config"
	"github.com/Temutjin2k/kekelink/internal/adapter/http/middleware"
	"github.com/Temutjin2k/kekelink/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/kekelink/internal/adapter/http/ws"
	repo "github.com/Temutjin2k/kekelink/internal/adapter/postgres"
	rabbitadapter "github.com/Temutjin2k/kekelink/internal/adapter/rabbit"
	redisstore "github.com/Temutjin2k/kekelink/internal/adapter/redis"
	"github.com/Temutjin2k/kekelink/internal/adapter/scoring"
	"github.com/Temutjin2k/kekelink/internal/service/admin"
	"github.com/Temutjin2k/kekelink/internal/service/auth"
	"github.com/Temutjin2k/kekelink/internal/service/hub"
	"github.com/Temutjin2k/kekelink/internal/service/safety"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/postgres"
	"github.com/Temutjin2k/kekelink/pkg/rabbit"
	"github.com/Temutjin2k/kekelink/pkg/trm"
	ws "github.com/Temutjin2k/kekelink/pkg/wsHub"
	"github.com/redis/go-redis/v9"
)

var ErrNotInitialized = errors.New("application not initialized")

type App struct {
	postgresDB *postgres.PostgreDB
	rabbit     *rabbit.RabbitMQ
	redis      *redis.Client

	hub        *hub.Hub
	safety     *safety.Service
	consumer   *rabbitadapter.IncidentConsumer
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

// NewApplication connects every enabled backing system and builds the
// services on top of them. Partially opened resources are released on error.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	if err := a.initBackends(ctx); err != nil {
		return nil, err
	}

	var (
		publisher hub.AlertPublisher
		mirror    hub.LocationMirror
		geo       admin.GeoIndex
		limiter   middleware.RateLimiter
	)
	if a.rabbit != nil {
		publisher = rabbitadapter.NewAlertProducer(a.rabbit)
		a.consumer = rabbitadapter.NewIncidentConsumer(a.rabbit, log)
	}
	if a.redis != nil {
		m := redisstore.NewLocationMirror(a.redis, cfg.Redis.KeyPrefix)
		mirror, geo = m, m
		limiter = redisstore.NewRateLimiter(a.redis, cfg.Redis.RateLimit, cfg.Redis.RateLimitWindow)
	}

	a.hub = hub.New(publisher, mirror, log)

	var (
		reports   safety.ReportRepo           = unavailableReports{}
		feedback  safety.RouteFeedbackRepo    = unavailableFeedback{}
		trips     safety.TripRepo             = unavailableTrips{}
		users     safety.UserRepo             = unavailableTrips{}
		txm       safety.TxManager            = directTx{}
		analytics admin.AnalyticsRepository   = unavailableReports{}
		drivers   admin.DriverStatsRepository = unavailableReports{}
	)
	if a.postgresDB != nil {
		reportRepo := repo.NewReportRepo(a.postgresDB.Pool)
		reports, analytics = reportRepo, reportRepo
		feedback = repo.NewRouteFeedbackRepo(a.postgresDB.Pool)
		drivers = repo.NewDriverStatsRepo(a.postgresDB.Pool)
		trips = repo.NewTripRepo(a.postgresDB.Pool)
		users = repo.NewUserRepo(a.postgresDB.Pool)
		txm = trm.New(a.postgresDB.Pool)
	}

	baseURL := ""
	if cfg.Scoring.Enabled {
		baseURL = cfg.Scoring.BaseURL
	}
	scorer := scoring.New(baseURL, cfg.Scoring.APIKey, cfg.Scoring.Timeout, log)

	a.safety = safety.NewService(reports, feedback, trips, users, txm, scorer, a.hub, log)
	adminService := admin.NewAdminService(analytics, drivers, a.hub, geo, log)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)
	if err != nil {
		return nil, fmt.Errorf("init auth: %w", err)
	}

	wsHandler := wshandler.NewHandler(a.hub, ws.Options{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		WriteTimeout:   cfg.WebSocket.WriteWait,
		PongTimeout:    cfg.WebSocket.PongWait,
		PingInterval:   cfg.WebSocket.PingPeriod,
		MaxMessageSize: cfg.WebSocket.ReadLimit,
	}, cfg.WebSocket.Origins(), log)

	a.httpServer, err = server.New(cfg.Server, cfg.Log.ServiceName, server.Deps{
		Hub:     a.hub,
		Safety:  a.safety,
		Trips:   a.safety,
		Admin:   adminService,
		WS:      wsHandler,
		Auth:    tokens,
		Limiter: limiter,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}

	return a, nil
}

func (a *App) initBackends(ctx context.Context) error {
	cfg := a.cfg

	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("setup database: %w", err)
		}
		a.postgresDB = db

		if err := repo.EnsureSchema(ctx, db.Pool, cfg.Database.Seed); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	} else {
		a.log.Warn(ctx, "database disabled, report endpoints will answer 503")
	}

	if cfg.RabbitMQ.Enabled {
		client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), a.log)
		if err != nil {
			return fmt.Errorf("setup rabbitmq: %w", err)
		}
		a.rabbit = client

		if err := client.DeclareTopology(rabbitadapter.SafetyExchange, ""); err != nil {
			return fmt.Errorf("declare alert exchange: %w", err)
		}
	} else {
		a.log.Warn(ctx, "rabbitmq disabled, alerts stay in process")
	}

	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.DialTimeout)
		if err != nil {
			return fmt.Errorf("setup redis: %w", err)
		}
		a.redis = client
	} else {
		a.log.Warn(ctx, "redis disabled, no location mirror and no rate limiting")
	}

	return nil
}

// Run serves until SIGINT/SIGTERM or a fatal server error, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	a.httpServer.Run(ctx, errCh)

	var wg sync.WaitGroup
	if a.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.consumer.ConsumeIncidents(ctx, a.safety.HandleIncident); err != nil {
				a.log.Error(ctx, "incident consumer stopped", err)
			}
		}()
	}

	defer func() {
		cancel()
		wg.Wait()
		a.close(context.WithoutCancel(ctx))
		a.log.Info(ctx, "application closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	a.log.Info(wrap.WithAction(ctx, "app_started"), "kekelink started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

// close releases everything in reverse order of creation.
func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.hub != nil {
		a.hub.CloseAll(ctx)
	}

	if a.rabbit != nil {
		if err := a.rabbit.Close(ctx); err != nil {
			a.log.Warn(ctx, "failed to close rabbitmq", "error", err.Error())
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn(ctx, "failed to close redis", "error", err.Error())
		}
	}

	if a.postgresDB != nil {
		a.postgresDB.Close()
	}
}
