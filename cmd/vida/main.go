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

	"github.com/dvilela/sistema-vida/internal/api"
	"github.com/dvilela/sistema-vida/internal/config"
	"github.com/dvilela/sistema-vida/internal/content"
	"github.com/dvilela/sistema-vida/internal/events"
	"github.com/dvilela/sistema-vida/internal/notify"
	"github.com/dvilela/sistema-vida/internal/persist"
	"github.com/dvilela/sistema-vida/internal/remote"
	"github.com/dvilela/sistema-vida/internal/state"
	syncctl "github.com/dvilela/sistema-vida/internal/sync"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Sistema de Vida...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/vida.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Remote document store: Postgres when configured, otherwise in-memory.
	var remoteStore remote.Store
	var pgStore *remote.PostgresStore
	if cfg.Database.Postgres.DSN != "" {
		ps, pgErr := remote.NewPostgresStore(context.Background(), cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without durable storage", zap.Error(pgErr))
		} else {
			pgStore = ps
			remoteStore = ps
		}
	}
	if remoteStore == nil {
		remoteStore = remote.NewMemoryStore()
		logger.Warn("using in-memory document store, data is lost on exit")
	}

	// Mission content generator
	var gen content.Generator
	if cfg.Generator.APIKey != "" {
		gen = content.WithRetry(content.NewLLMGenerator(content.LLMConfig{
			Endpoint: cfg.Generator.Endpoint,
			APIKey:   cfg.Generator.APIKey,
			Model:    cfg.Generator.Model,
			Timeout:  cfg.Generator.Timeout(),
		}, logger), logger)
		logger.Info("LLM mission generator enabled", zap.String("model", cfg.Generator.Model))
	} else {
		gen = content.StaticGenerator{}
		logger.Info("no generator configured, using static mission content")
	}

	// Notification dispatcher and optional delivery adapters
	dispatcher := notify.NewDispatcher(logger)
	var discordAdapter *notify.DiscordAdapter
	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.BotToken != "" {
		da, dErr := notify.NewDiscordAdapter(cfg.Notify.Discord.BotToken, cfg.Notify.Discord.ChannelID, logger)
		if dErr != nil {
			logger.Warn("Discord unavailable, running without Discord notifications", zap.Error(dErr))
		} else {
			discordAdapter = da
			dispatcher.Register(da)
		}
	}
	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.BotToken != "" {
		dispatcher.Register(notify.NewSlackAdapter(cfg.Notify.Slack.BotToken, cfg.Notify.Slack.Channel, logger))
	}

	// World-event contribution bus
	var bus *events.Bus
	if cfg.Database.Redis.URL != "" {
		b, busErr := events.NewBus(cfg.Database.Redis.URL, logger)
		if busErr != nil {
			logger.Warn("Redis unavailable, world events stay local", zap.Error(busErr))
		} else {
			bus = b
		}
	}

	// Session wiring
	store := state.New(logger)
	pipeline := persist.NewPipeline(remoteStore, cfg.Session.UserID, cfg.Game.DebounceDelay(), logger)
	controller := syncctl.NewController(store, remoteStore, pipeline, gen,
		dispatcher, bus, cfg.Session.UserID, cfg.Session.Email, logger)
	controller.SetStreakInterval(cfg.Game.StreakBonusInterval())

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	controller.FetchAll(loadCtx)
	cancelLoad()

	// Fold in contributions from other instances.
	busCtx, cancelBus := context.WithCancel(context.Background())
	if bus != nil {
		go func() {
			for contrib := range bus.Subscribe(busCtx) {
				controller.ApplyContribution(contrib)
			}
		}()
	}

	// Start server
	handler := api.NewHandler(controller, dispatcher, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Sistema de Vida listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Sistema de Vida...")
	cancelBus()
	srv.Shutdown(context.Background())
	controller.Close()
	if bus != nil {
		bus.Close()
	}
	if discordAdapter != nil {
		discordAdapter.Close()
	}
	if pgStore != nil {
		pgStore.Close()
	}
}
