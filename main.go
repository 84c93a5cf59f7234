package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/FACorreiaa/go-household-registry/app/db"
	appLogger "github.com/FACorreiaa/go-household-registry/app/logger"
	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/config"
	"github.com/FACorreiaa/go-household-registry/internal/api/city"
	"github.com/FACorreiaa/go-household-registry/internal/api/geocoding"
	"github.com/FACorreiaa/go-household-registry/internal/api/household"
	"github.com/FACorreiaa/go-household-registry/internal/api/neighborhood"
	"github.com/FACorreiaa/go-household-registry/internal/api/postal"
	"github.com/FACorreiaa/go-household-registry/internal/api/region"
	"github.com/FACorreiaa/go-household-registry/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metrics.InitProviders(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations *before* initializing the main pool
	err = database.RunMigrations(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	cityRepo := city.NewRepository(pool, logger)
	regionRepo := region.NewRepository(pool, logger)
	neighborhoodRepo := neighborhood.NewRepository(pool, logger)
	householdRepo := household.NewRepository(pool, logger)

	postalClient := postal.NewClient(cfg.Providers.Postal.BaseURL, cfg.Providers.Postal.Timeout, logger)
	geocoder := geocoding.NewClient(geocoding.Config{
		BaseURL:      cfg.Providers.Geocoding.BaseURL,
		UserAgent:    cfg.Providers.Geocoding.UserAgent,
		Language:     cfg.Providers.Geocoding.Language,
		CountryCodes: cfg.Providers.Geocoding.CountryCodes,
		Timeout:      cfg.Providers.Geocoding.Timeout,
		RateInterval: cfg.Providers.Geocoding.RateInterval,
		CacheTTL:     cfg.Providers.Geocoding.CacheTTL,
	}, logger)

	neighborhoodService := neighborhood.NewService(neighborhoodRepo, regionRepo, logger)
	regionService := region.NewService(regionRepo, neighborhoodRepo, logger)
	householdService := household.NewService(householdRepo, cityRepo, postalClient, geocoder, neighborhoodService, logger)

	routerConfig := &router.Config{
		CityHandler:         city.NewCityHandler(cityRepo, logger),
		HouseholdHandler:    household.NewHouseholdHandler(householdService, logger),
		NeighborhoodHandler: neighborhood.NewNeighborhoodHandler(neighborhoodService, logger),
		RegionHandler:       region.NewRegionHandler(regionService, logger),
	}
	apiRouter := router.SetupRouter(routerConfig)

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
