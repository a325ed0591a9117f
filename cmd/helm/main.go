package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/slipstream/helm/internal/activity"
	"github.com/slipstream/helm/internal/api"
	"github.com/slipstream/helm/internal/auth"
	"github.com/slipstream/helm/internal/config"
	"github.com/slipstream/helm/internal/database"
	"github.com/slipstream/helm/internal/logger"
	"github.com/slipstream/helm/internal/migration"
	"github.com/slipstream/helm/internal/poller"
	"github.com/slipstream/helm/internal/upstream"
	"github.com/slipstream/helm/internal/websocket"
	"github.com/slipstream/helm/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// .env is optional; real deployments configure via file or environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	log.Info().Str("upstream", cfg.Upstream.BaseURL).Msg("starting helm console")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	authService, err := auth.NewService(db.Conn(), cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create auth service")
	}

	client := upstream.NewClient(cfg.Upstream, log.Logger)
	store := activity.NewStore(log.Logger)
	sessions := migration.NewManager(log.Logger)

	hub := websocket.NewHub()
	go hub.Run()

	queuePoller := poller.NewQueuePoller(
		client, store, hub,
		cfg.Polling.QueueActive, cfg.Polling.QueueIdle,
		log.Logger,
	)
	queuePoller.Start()
	defer queuePoller.Stop()

	refresher, err := poller.NewRequestRefresher(
		client, store, hub,
		cfg.Polling.RequestsRefresh,
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create request refresher")
	}
	if err := refresher.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start request refresher")
	}
	defer refresher.Stop()

	// Upstream pushes bypass the poll cycle.
	subCtx, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()
	subscriber := upstream.NewSubscriber(client, log.Logger, queuePoller.Apply)
	go subscriber.Run(subCtx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := api.NewServer(store, sessions, client, authService, db, queuePoller, refresher, log.Logger)
	server.RegisterRoutes(e)
	e.GET("/ws", hub.HandleWebSocket)

	if dist, err := web.DistFS(); err == nil {
		e.StaticFS("/", dist)
	} else {
		log.Warn().Err(err).Msg("frontend assets unavailable, serving API only")
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("http server listening")
		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown failed")
	}
}
