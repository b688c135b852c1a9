package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/api"
	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/config"
	"github.com/cymond/educhat/internal/engine"
	"github.com/cymond/educhat/internal/gateway"
	"github.com/cymond/educhat/internal/provider"
	"github.com/cymond/educhat/internal/session"
	"github.com/cymond/educhat/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting EduChat...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/educhat.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Provider router: each character can be bound to its own model.
	router := provider.NewRouter(logger)
	for _, pc := range cfg.Providers {
		provCfg := provider.Config{
			ID: pc.ID, Type: pc.Type, Name: pc.Name,
			Endpoint: pc.Endpoint, APIKey: pc.APIKey, Model: pc.Model,
		}
		var p provider.Provider
		switch pc.Type {
		case "openai":
			p = provider.NewOpenAIProvider(provCfg, logger)
		case "anthropic":
			p = provider.NewAnthropicProvider(provCfg, logger)
		default:
			logger.Warn("unknown provider type", zap.String("id", pc.ID), zap.String("type", pc.Type))
			continue
		}
		router.Register(p)
		if pc.Default {
			router.SetDefault(pc.ID)
		}
		for _, name := range pc.Characters {
			router.Bind(name, pc.ID)
		}
	}

	// PostgreSQL: states, memories, transcript.
	pgStore, err := store.New(cfg.Database.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("PostgreSQL unavailable", zap.Error(err))
	}
	if err := pgStore.Migrate(context.Background(), "migrations"); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// Redis session cache. Optional: without it every turn reads history
	// from Postgres and sessions never expire on idle.
	var sessions *session.Cache
	if cfg.Database.Redis.URL != "" {
		sc, sErr := session.New(cfg.Database.Redis.URL, cfg.Chat.SessionIdle(), cfg.Chat.HistoryLimit, logger)
		if sErr != nil {
			logger.Warn("Redis unavailable, running without session cache", zap.Error(sErr))
		} else {
			sessions = sc
		}
	}

	// Character registry with the built-in archetypes.
	registry := character.NewRegistry(logger)
	for _, p := range character.BuiltinProfiles() {
		registry.Register(p)
	}

	var sessionCache engine.SessionCache
	if sessions != nil {
		sessionCache = sessions
	}
	eng := engine.New(registry, pgStore, pgStore, pgStore, sessionCache, router, engine.Options{
		HistoryLimit:  cfg.Chat.HistoryLimit,
		MemoryLimit:   cfg.Chat.MemoryLimit,
		MinImportance: cfg.Chat.MinImportance,
	}, logger)

	// Platform gateways.
	defaultChar := cfg.Gateway.DefaultCharacter
	if defaultChar == "" {
		defaultChar = "Aino"
	}
	gw := gateway.NewGateway(eng, registry, defaultChar, logger)

	if cfg.Gateway.Slack.Enabled && cfg.Gateway.Slack.BotToken != "" {
		gw.Register(gateway.NewSlackAdapter(cfg.Gateway.Slack.BotToken, cfg.Gateway.Slack.AppToken, logger))
	}
	if cfg.Gateway.Discord.Enabled && cfg.Gateway.Discord.BotToken != "" {
		gw.Register(gateway.NewDiscordAdapter(cfg.Gateway.Discord.BotToken, logger))
	}

	gwCtx, gwCancel := context.WithCancel(context.Background())
	defer gwCancel()
	if err := gw.ConnectAll(gwCtx); err != nil {
		logger.Warn("some gateway adapters failed to connect", zap.Error(err))
	}

	// HTTP API.
	handler := api.NewHandler(eng, registry, pgStore, pgStore, logger)

	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("EduChat listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down EduChat...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
	gwCancel()
	gw.Close()
	if sessions != nil {
		sessions.Close()
	}
	pgStore.Close()
}
