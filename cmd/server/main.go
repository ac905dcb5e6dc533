package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"persona-chat/backend/internal/ai"
	"persona-chat/backend/internal/api"
	"persona-chat/backend/internal/service"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/config"
	"persona-chat/backend/pkg/logger"
	"persona-chat/backend/pkg/middleware"
	"persona-chat/backend/pkg/observability"
	"persona-chat/backend/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	appLogger := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing := observability.SetupTracing("persona-chat")
	defer shutdownTracing()

	if cfg.Metrics.Enabled {
		observability.SetupPrometheusMetrics(cfg.Metrics.Port)
	}

	dataStore, err := setupStore(cfg)
	if err != nil {
		log.Fatalf("Failed to setup store: %v", err)
	}

	if err := store.Seed(context.Background(), dataStore, appLogger); err != nil {
		log.Fatalf("Failed to seed characters: %v", err)
	}

	sessions := setupSessions(cfg, appLogger)

	streamer := ai.NewClient(ai.Config{
		BaseURL:   cfg.AI.BaseURL,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})

	userService := service.NewUserService(dataStore)
	characterService := service.NewCharacterService(dataStore)
	conversationService := service.NewConversationService(dataStore, appLogger)
	chatService := service.NewChatService(dataStore, streamer, appLogger)

	authLimiterOpts := middleware.DefaultRateLimiterOptions()
	authLimiterOpts.Limit = rate.Limit(cfg.Security.AuthRateLimit)
	authLimiterOpts.Burst = cfg.Security.AuthRateBurst

	router := api.NewRouter(api.RouterConfig{
		Auth: api.NewAuthHandler(
			userService, sessions, appLogger,
			cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.CookieSecure,
		),
		Characters:    api.NewCharacterHandler(characterService, appLogger),
		Conversations: api.NewConversationHandler(conversationService, appLogger),
		Messages:      api.NewMessageHandler(chatService, appLogger),
		Sessions:      sessions,
		CookieName:    cfg.Session.CookieName,
		Logger:        appLogger,
		AuthLimiter:   middleware.NewRateLimiter(appLogger, authLimiterOpts),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	appLogger.Info("shutting down server")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Failed to shutdown server: %v", err)
	}
	appLogger.Info("server shutdown complete")
}

// setupStore opens the configured store backend
func setupStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		return store.NewMemoryStore(), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db)
}

// setupSessions picks redis-backed sessions when configured, otherwise the
// in-process store
func setupSessions(cfg *config.Config, appLogger *logger.Logger) session.Store {
	if !cfg.Redis.Enabled {
		return session.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	appLogger.Info("using redis session store", "addr", cfg.Redis.Addr)
	return session.NewRedisStore(client)
}
