// Package api exposes the console's HTTP surface: auth, activity views over
// the matched downloads, and migration preview editing sessions.
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
	"github.com/slipstream/helm/internal/auth"
	"github.com/slipstream/helm/internal/database"
	"github.com/slipstream/helm/internal/migration"
)

// Upstream is the subset of the media server client the handlers need.
type Upstream interface {
	GenerateMigrationPreview(ctx context.Context) (*migration.MigrationPreview, error)
	ExecuteMigration(ctx context.Context, input migration.ExecuteMigrationInput) (*migration.MigrationResult, error)
	Ping(ctx context.Context) error
}

// QueueTrigger requests an immediate queue poll.
type QueueTrigger interface {
	Trigger()
}

// RequestsRefresher requests an immediate portal request refresh.
type RequestsRefresher interface {
	Refresh()
}

// Server holds the API dependencies and registers routes.
type Server struct {
	store     *activity.Store
	sessions  *migration.Manager
	upstream  Upstream
	auth      *auth.Service
	db        *database.DB
	trigger   QueueTrigger
	refresher RequestsRefresher
	logger    zerolog.Logger
}

// NewServer creates the API server.
func NewServer(
	store *activity.Store,
	sessions *migration.Manager,
	up Upstream,
	authService *auth.Service,
	db *database.DB,
	trigger QueueTrigger,
	refresher RequestsRefresher,
	logger zerolog.Logger,
) *Server {
	return &Server{
		store:     store,
		sessions:  sessions,
		upstream:  up,
		auth:      authService,
		db:        db,
		trigger:   trigger,
		refresher: refresher,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.Recover())

	e.GET("/api/v1/health", s.Health)

	authGroup := e.Group("/api/v1/auth")
	authGroup.GET("/status", s.AuthStatus)
	authGroup.POST("/setup", s.AuthSetup)
	authGroup.POST("/login", s.Login)

	api := e.Group("/api/v1", s.auth.Middleware())

	api.GET("/activity/queue", s.GetQueue)
	api.GET("/activity/downloads", s.GetMatchedDownloads)
	api.POST("/activity/refresh", s.RefreshActivity)

	api.POST("/migration/preview", s.OpenPreviewSession)
	api.GET("/migration/preview/:id", s.GetPreview)
	api.PUT("/migration/preview/:id/files/:fileId", s.SetFileEdit)
	api.DELETE("/migration/preview/:id/files/:fileId", s.ClearFileEdit)
	api.DELETE("/migration/preview/:id", s.ClosePreviewSession)
	api.POST("/migration/preview/:id/execute", s.ExecuteMigration)

	api.GET("/preferences", s.ListPreferences)
	api.PUT("/preferences/:key", s.SetPreference)
}
