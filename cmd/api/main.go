// Package main is the entry point for the Granblue Checker API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/image/font"

	"github.com/pkordes/granblue-checker/internal/config"
	"github.com/pkordes/granblue-checker/internal/handler"
	"github.com/pkordes/granblue-checker/internal/media"
	"github.com/pkordes/granblue-checker/internal/middleware"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/service"
	"github.com/pkordes/granblue-checker/internal/snapshot"
	"github.com/pkordes/granblue-checker/openapi"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Storage ----------------------------------------------------------
	images, err := media.NewStorage(cfg.ImageDir)
	if err != nil {
		slog.Error("failed to open image storage", "dir", cfg.ImageDir, "error", err)
		os.Exit(1)
	}

	// --- Snapshot font ----------------------------------------------------
	var face font.Face
	if cfg.SnapshotFont != "" {
		if face, err = snapshot.LoadFace(cfg.SnapshotFont); err != nil {
			slog.Error("failed to load snapshot font", "path", cfg.SnapshotFont, "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	itemRepo := repo.NewItemRepo(pool)
	inputRepo := repo.NewInputRepo(pool)

	taxonomySvc := service.NewTaxonomyService(repo.NewCategoryRepo(pool), repo.NewValueRepo(pool))
	itemSvc := service.NewItemService(itemRepo, taxonomySvc, images, logger)

	srv := handler.NewServer(handler.Services{
		Items:    itemSvc,
		Taxonomy: taxonomySvc,
		Inputs:   service.NewInputService(inputRepo),
		Sessions: service.NewSessionService(repo.NewSessionRepo(pool)),
		Export:   service.NewExportService(itemRepo, inputRepo, images, snapshot.NewRenderer(face), logger),
		Bulk:     service.NewBulkUploadService(itemSvc, taxonomySvc, logger),
	}, handler.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		AdminAuth:     middleware.NewAdminAuth(cfg.AdminToken),
		SessionLimit:  middleware.NewRateLimiter(cfg.SessionRatePerMinute).Handler(logger),
		OpenAPI:       openapi.Document,
		Log:           logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RealIP rewrites r.RemoteAddr from client-supplied headers, which the
	// share-link rate limiter keys on, so it only runs behind a trusted proxy.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewClientAddr(cfg.TrustProxy))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Image exports render in-process, so writes get more headroom than reads.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
