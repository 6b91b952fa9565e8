package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/aura-events/concierge-service/internal/activity"
	"github.com/aura-events/concierge-service/internal/auth"
	"github.com/aura-events/concierge-service/internal/concierge"
	"github.com/aura-events/concierge-service/internal/config"
	"github.com/aura-events/concierge-service/internal/database"
	"github.com/aura-events/concierge-service/internal/handler"
	"github.com/aura-events/concierge-service/internal/hub"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/presence"
	"github.com/aura-events/concierge-service/internal/service"
	"github.com/aura-events/concierge-service/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log.Init(cfg.Log)
	l := log.L()
	l.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting concierge service")

	// Initialize database and stores
	db, err := database.New(cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}

	chatStore, err := store.NewGormStore(db)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize chat store")
	}

	// Initialize presence store
	presenceStore, err := presence.NewRedisStore(cfg.Redis, cfg.Presence)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer presenceStore.Close()
	l.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	// Initialize activity recorder
	recorder := activity.NewAsyncRecorder(chatStore)
	defer recorder.Close()

	// Initialize hub
	wsHub := hub.NewHub()
	go wsHub.Run()

	// Initialize concierge engine and feed generator
	catalog := concierge.DefaultCatalog()
	engine := concierge.NewEngine(chatStore, chatStore, catalog)
	feeds := concierge.NewGenerator(chatStore, catalog)

	// Initialize token validator
	validator := auth.NewValidator(cfg.Auth)

	// Initialize chat service
	chatSvc := service.NewChatService(wsHub, engine, feeds, chatStore, presenceStore, recorder, cfg.Feed)

	// Initialize handlers
	wsHandler := handler.NewWSHandler(wsHub, chatSvc, validator, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(wsHub, chatSvc, feeds, validator, chatStore, presenceStore)

	router := mux.NewRouter()
	router.HandleFunc("/chat/ws", wsHandler.HandleWebSocket)
	httpHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		l.Info().Str("addr", server.Addr).Msg("concierge service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down concierge service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("concierge service stopped")
}
