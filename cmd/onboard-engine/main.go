package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stagecrew/onboard-engine/internal/api"
	"github.com/stagecrew/onboard-engine/internal/cleanup"
	"github.com/stagecrew/onboard-engine/internal/config"
	"github.com/stagecrew/onboard-engine/internal/roster"
	"github.com/stagecrew/onboard-engine/internal/solver"
	"github.com/stagecrew/onboard-engine/internal/storage"
	"github.com/stagecrew/onboard-engine/internal/store"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting onboard-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"store_backend", cfg.Store.Backend,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.RunMigrations(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize candidate/group repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize solution store
	var solutions store.SolutionStore
	var memStore *store.MemoryStore

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		solutions, err = store.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Store.Retention)
		if err != nil {
			slog.Error("failed to create redis solution store", "error", err)
			os.Exit(1)
		}
	default:
		memStore = store.NewMemoryStore()
		solutions = memStore
	}

	// Load group catalog
	catalog := roster.NewLoader()
	if err := catalog.LoadFromDir(cfg.Roster.Dir); err != nil {
		slog.Warn("failed to load group catalog", "dir", cfg.Roster.Dir, "error", err)
	}

	// Initialize allocator
	allocator := solver.NewAllocator(solver.Config{
		GenderWeight:     cfg.Solver.GenderWeight,
		ExperienceWeight: cfg.Solver.ExperienceWeight,
	})
	allocator.SetKnownGroups(catalog.IDs())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start retention worker (memory store only; Redis expires via TTL)
	if memStore != nil && cfg.Store.Retention > 0 {
		cleaner := cleanup.NewCleaner(memStore, cfg.Store.Retention, cfg.Cleanup.Interval)
		cleaner.Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, allocator, solutions, repo, catalog)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Close store and repository
	if err := solutions.Close(); err != nil {
		slog.Error("solution store close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("onboard-engine stopped")
}
