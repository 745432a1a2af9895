package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cocodry/docs"
	"cocodry/internal/config"
	"cocodry/internal/gateway"
	"cocodry/internal/handlers"
	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
	"cocodry/internal/repository"
	"cocodry/internal/repository/db"
	"cocodry/internal/server"
	"cocodry/internal/service"
	"cocodry/internal/siren"

	"github.com/gofrs/flock"
)

const (
	dialTimeout = 30 * time.Second
	devTokenTTL = 12 * time.Hour
)

// @title                       cocodry
// @version                     1.0
// @description                 Drying-batch control and hazard alerting for the coconut husk dryer.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// one controller per dryer
	lock, err := db.AcquireLock(cfg.DB.LockPath)
	if err != nil {
		log.Fatalw("another instance owns the state database", "err", err, "lock", cfg.DB.LockPath)
	}
	defer releaseLock(lock, log)

	conn, repos := openRepos(cfg, log)
	if conn != nil {
		defer func() {
			if cerr := conn.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()
	}

	backend := newBackend(cfg, log)
	player, closePlayer := newSiren(cfg, log)
	defer closePlayer()

	rec := metrics.New()
	services := service.NewService(service.Config{
		PollInterval:          cfg.Poll.Interval,
		WatchInterval:         cfg.Poll.IdleInterval,
		CallTimeout:           cfg.Backend.Timeout,
		OverheatC:             cfg.Hazard.ThresholdC,
		CountdownSeconds:      cfg.Hazard.CountdownSeconds,
		DefaultTargetMoisture: cfg.Batch.DefaultTargetMoisture,
		SoundEnabled:          cfg.Alarm.SoundEnabled,
		JWTSecret:             cfg.Auth.JWTSecret,
	}, service.Deps{
		Repos:   repos,
		Backend: backend,
		Player:  player,
		Metrics: rec,
		Log:     log,
	})

	if s, ok := services.Recover(context.Background()); ok {
		log.Infow("resumed running batch", "batch_id", s.BatchID, "start_time", s.StartTime)
	}
	if cfg.Backend.Simulate {
		issueDevToken(cfg, log)
	}

	apiHandler := handlers.NewHandler(services, log.Named("http"),
		handlers.WithMetrics(rec.Gatherer()),
		handlers.WithStreamInterval(cfg.WS.DefaultInterval),
	)

	srv := server.New(server.Config{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(srv, services, cfg.HTTP.ShutdownTimeout, log)
}

// openRepos opens the SQLite state database. When it cannot be opened the
// service still runs, but nothing survives a restart.
func openRepos(cfg *config.Config, log *logger.Logger) (*sql.DB, *repository.Repository) {
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Errorw("state database unavailable; sessions will not survive a restart", "err", err, "path", cfg.DB.Path)
		return nil, repository.NewMemoryRepository()
	}
	log.Infow("state database opened", "path", cfg.DB.Path)
	return conn, repository.NewRepository(conn)
}

func newBackend(cfg *config.Config, log *logger.Logger) service.Backend {
	if cfg.Backend.Simulate {
		log.Warnw("backend.simulate is on; using the built-in dryer simulator")
		return gateway.NewSimulator()
	}
	client, err := gateway.NewClient(gateway.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		BreakerFailures: cfg.Backend.BreakerFailures,
		BreakerOpenFor:  cfg.Backend.BreakerOpenFor,
	}, log.Named("gateway"))
	if err != nil {
		log.Fatalw("failed to build backend client", "err", err)
	}
	return client
}

// newSiren connects the MQTT siren relay. Without a broker, or when the
// broker stays unreachable, the alarm is only logged and streamed.
func newSiren(cfg *config.Config, log *logger.Logger) (service.Player, func()) {
	fallback := siren.NewLog(log.Named("siren"))
	if cfg.Alarm.MQTT.Broker == "" {
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	s, err := siren.Dial(ctx, siren.Config{
		Broker:   cfg.Alarm.MQTT.Broker,
		ClientID: cfg.Alarm.MQTT.ClientID,
		Topic:    cfg.Alarm.MQTT.Topic,
		Username: cfg.Alarm.MQTT.Username,
		Password: cfg.Alarm.MQTT.Password,
		Retries:  cfg.Alarm.MQTT.Retries,
	}, log.Named("siren"))
	if err != nil {
		log.Errorw("siren broker unreachable; alarm will only be logged", "err", err, "broker", cfg.Alarm.MQTT.Broker)
		return fallback, func() {}
	}
	return s, s.Close
}

// issueDevToken logs a bearer token for local runs against the simulator.
func issueDevToken(cfg *config.Config, log *logger.Logger) {
	if cfg.Auth.IsPlaceholder() {
		log.Warnw("auth.jwt_secret is the shipped placeholder; tokens are forgeable outside this dev run")
	}
	op := models.Operator{Email: "dev@localhost", Role: "ADMIN"}
	token, err := service.NewIdentityService(cfg.Auth.JWTSecret).IssueToken(op, devTokenTTL)
	if err != nil {
		log.Errorw("failed to issue dev token", "err", err)
		return
	}
	log.Debugw("dev bearer token", "operator", op.Email, "token", token, "ttl", devTokenTTL)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8090"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
// A running batch stays persisted and is resumed on the next start.
func waitForShutdown(srv *server.Server, services *service.Service, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorw("server forced to shutdown", "err", err)
	}

	services.Close()
}

func releaseLock(lock *flock.Flock, log *logger.Logger) {
	if err := lock.Unlock(); err != nil {
		log.Warnw("failed to release lock", "err", err)
	}
}
