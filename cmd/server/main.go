// Command server runs the robot access authority.
//
//	@title			Robot Access API
//	@version		1.0
//	@description	Session and timeslot access authority for the shared lab robots.
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

//go:generate swag init -g cmd/server/main.go -o ../../docs --outputTypes go

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/api"
	"github.com/botlab/robot-access/internal/api/handler"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/service"
	"github.com/botlab/robot-access/internal/gateway"
	"github.com/botlab/robot-access/internal/infrastructure/crypto"
	mongodb "github.com/botlab/robot-access/internal/infrastructure/db/mongo"
	redisdb "github.com/botlab/robot-access/internal/infrastructure/db/redis"
	"github.com/botlab/robot-access/internal/infrastructure/device"
	"github.com/botlab/robot-access/internal/infrastructure/queue"
	"github.com/botlab/robot-access/internal/pkg/config"
	"github.com/botlab/robot-access/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "robot-access",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "robot-access",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	accounts := mongodb.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create account indexes")
	}

	authority := service.NewAuthService(accounts, crypto.NewBcryptHasher(0), cfg.JWTSecret, service.AuthOptions{
		TokenTTL:          cfg.Session.TTL,
		RetainOnSupersede: !cfg.Session.EvictOnSupersede,
	}, logger.Component("auth"))

	if err := bootstrap(ctx, authority, cfg.Bootstrap.Passwords(), log); err != nil {
		log.Fatal().Err(err).Msg("failed to provision privileged accounts")
	}

	timeslots := service.NewTimeslotService(accounts, cfg.Timeslot.RejectOverlap, logger.Component("timeslot"))

	hub := gateway.NewHub(authority, cfg.Gateway.SendBuffer, logger.Component("gateway"))
	authority.SetObserver(hub)
	timeslots.SetObserver(hub)

	dispatcher := queue.NewDispatcher(cfg.Gateway.RelayWorkers, hub, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	relay := redisdb.NewTelemetryRelay(rdb, cfg.Redis.ChannelPrefix, dispatcher, logger.Component("relay"))
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("telemetry relay stopped")
		}
	}()

	pusher := device.NewHTTPPusher(cfg.Robots.Addrs(), nil, logger.Component("device"))

	e := api.NewRouter(api.Deps{
		Log:       logger.Component("http"),
		Authority: authority,
		Accounts:  authority,
		Timeslots: timeslots,
		Publisher: dispatcher,
		Pusher:    pusher,
		Stream:    hub.Handler(),
		DeviceKey: cfg.DeviceKey,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	hub.Close()
	cancel()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := mongodb.Disconnect(mongoClient); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("server stopped")
}

// bootstrap creates the privileged accounts that have a configured password
// and do not exist yet.
func bootstrap(ctx context.Context, authority *service.AuthService, passwords map[domain.Role]string, log zerolog.Logger) error {
	for _, role := range domain.PrivilegedRoles() {
		created, err := authority.Bootstrap(ctx, role, passwords[role])
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("role", string(role)).Msg("privileged account created")
		}
	}
	return nil
}
