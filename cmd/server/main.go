package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neexbeast/tripplanner/internal/api"
	"github.com/neexbeast/tripplanner/internal/app"
	"github.com/neexbeast/tripplanner/internal/config"
	"github.com/neexbeast/tripplanner/internal/storage"
	"github.com/neexbeast/tripplanner/migrations"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		log.Error("loading .env", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireServer()
	}
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	// Run migrations.
	var migrationFS fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		migrationFS = os.DirFS(cfg.MigrationsDir)
	}
	applied, err := storage.RunMigrations(ctx, pool, migrationFS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "files", applied)

	// Wire providers, cache and composer.
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	repo := storage.NewRepository(pool)
	handlers := api.NewHandlers(api.Deps{
		Composer:    a.Composer,
		Store:       repo,
		Geocoder:    a.Geocoder,
		Attractions: a.Attractions,
		Catalog:     a.Catalog,
		Log:         log,
	})

	// A nil *redis.Client must not reach the router as a non-nil Pinger.
	var redisPinger api.Pinger
	if a.Redis != nil {
		redisPinger = &redisPingerAdapter{client: a.Redis}
	}

	router := api.NewRouter(handlers, api.RouterConfig{
		Token:       cfg.BearerToken,
		CORSOrigins: cfg.CORSOrigins,
	}, repo, redisPinger, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: api.DefaultComposeTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port, "catalog_size", a.Catalog.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}
