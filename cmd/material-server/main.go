// Package main provides the material registry server entry point.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brandworks/material-registry/internal/config"
	"github.com/brandworks/material-registry/internal/db"
	"github.com/brandworks/material-registry/pkg/assetcheck"
	"github.com/brandworks/material-registry/pkg/audit"
	"github.com/brandworks/material-registry/pkg/authz"
	"github.com/brandworks/material-registry/pkg/review"
	"github.com/brandworks/material-registry/pkg/specs"
	"github.com/brandworks/material-registry/pkg/storagesync"
)

func main() {
	var (
		listenAddr   string
		configPath   string
		databaseType string
		databaseDSN  string
	)

	flag.StringVar(&listenAddr, "listen", "", "Address to listen on (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to server config file")
	flag.StringVar(&databaseType, "db-type", "", "Database type (postgres, mysql, or sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags and environment override the config file.
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if databaseType != "" {
		cfg.Database.Type = databaseType
	}
	if databaseDSN != "" {
		cfg.Database.DSN = databaseDSN
	} else if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	logger.Info("starting material server",
		"listen", cfg.Listen,
		"dbType", cfg.Database.Type,
		"storageEnabled", cfg.Storage.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gormDB, err := db.Connect(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	specStore := specs.NewSpecStore(gormDB)
	registry := specs.NewRegistry(specStore)
	validator := assetcheck.NewValidator(registry)
	syncStore := storagesync.NewSyncStore(gormDB)

	var notifier review.Notifier = review.NewSlogNotifier(logger)
	if cfg.WebhookURL != "" {
		notifier = review.NewWebhookNotifier(cfg.WebhookURL, logger)
	}

	engine := review.NewEngine(gormDB, validator, notifier, syncStore, logger)

	// Serialize schema migrations across replicas.
	locker := db.NewMigrationLocker(gormDB)
	err = locker.WithLock(ctx, func() error {
		if err := specStore.AutoMigrate(); err != nil {
			return err
		}
		if err := syncStore.AutoMigrate(); err != nil {
			return err
		}
		return engine.AutoMigrate()
	})
	if err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Storage sync worker drains the upload queue in the background.
	var uploader storagesync.Uploader
	if cfg.Storage.Bucket != "" {
		uploader, err = storagesync.NewS3Uploader(ctx, cfg.Storage)
		if err != nil {
			logger.Error("failed to create S3 uploader", "error", err)
			os.Exit(1)
		}
	} else {
		uploader = storagesync.NewLogUploader(logger)
	}
	worker := storagesync.NewWorker(syncStore, uploader, engine.Materials(), cfg.Storage, logger)
	go worker.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Remote-User", "X-Remote-Role"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authz.IdentityMiddleware())
	router.Use(audit.OriginMiddleware())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		sqlDB, err := gormDB.DB()
		if err != nil || sqlDB.Ping() != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Mount("/api/v1/specs", specs.NewRouter(registry))
	router.Mount("/api/v1", review.NewRouter(engine))

	logger.Info("material server ready", "listen", cfg.Listen)

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("material server stopped")
}
