package api

import (
	"context"
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/api/handler"
	"github.com/loqui/chat-system/internal/api/middleware"
	"github.com/loqui/chat-system/internal/core/service"
	"github.com/loqui/chat-system/internal/infrastructure/db/postgres"
	redisdb "github.com/loqui/chat-system/internal/infrastructure/db/redis"
	"github.com/loqui/chat-system/internal/infrastructure/queue"
	"github.com/loqui/chat-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes
// registered. Background workers (the last-used touch dispatcher) run
// until ctx is cancelled.
func NewRouter(ctx context.Context, db *sql.DB, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("chat"))

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	channelRepo := postgres.NewChannelRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	touchDispatcher := queue.NewTouchDispatcher(0, sessionRepo, log)
	touchDispatcher.Start(ctx)

	sessionService := service.NewSessionService(
		userRepo,
		sessionRepo,
		service.NewTokenGenerator(),
		service.NewPasswordHasher(),
		cfg.SessionTTL,
		log,
	).WithLastUsedRecorder(touchDispatcher)
	if rdb != nil {
		sessionService.WithCache(redisdb.NewSessionCache(rdb, log))
	}

	userService := service.NewUserService(userRepo)
	channelService := service.NewChannelService(channelRepo, log)
	messageService := service.NewMessageService(messageRepo, channelRepo, log)

	authHandler := handler.NewAuthHandler(sessionService, cfg.SessionTTL)
	userHandler := handler.NewUserHandler(userService)
	channelHandler := handler.NewChannelHandler(channelService)
	messageHandler := handler.NewMessageHandler(messageService)
	authRequired := middleware.Auth(sessionService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authRequired)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Users ---
	e.GET("/users/:id", userHandler.Get)

	// --- Channels & messages ---
	e.POST("/channels", channelHandler.Create, authRequired)
	e.GET("/channels", channelHandler.List)
	e.GET("/channels/:id", channelHandler.Get)
	e.DELETE("/channels/:id", channelHandler.Delete, authRequired)
	e.POST("/channels/:id/messages", messageHandler.Post, authRequired)
	e.GET("/channels/:id/messages", messageHandler.ListByChannel)
	e.GET("/messages/:id", messageHandler.Get)
	e.DELETE("/messages/:id", messageHandler.Delete, authRequired)

	// --- Health probes & metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
