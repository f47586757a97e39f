package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ganeshcj/Optimedix/internal/config"
	"github.com/Ganeshcj/Optimedix/internal/domain/dashboard"
	"github.com/Ganeshcj/Optimedix/internal/domain/identity"
	"github.com/Ganeshcj/Optimedix/internal/domain/patient"
	"github.com/Ganeshcj/Optimedix/internal/domain/prescription"
	"github.com/Ganeshcj/Optimedix/internal/domain/report"
	"github.com/Ganeshcj/Optimedix/internal/domain/screening"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
	"github.com/Ganeshcj/Optimedix/internal/platform/blobstore"
	"github.com/Ganeshcj/Optimedix/internal/platform/db"
	"github.com/Ganeshcj/Optimedix/internal/platform/metrics"
	"github.com/Ganeshcj/Optimedix/internal/platform/middleware"
	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "optimedix-server",
		Short: "Optimedix retinal screening API server",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	initStoreCmd := &cobra.Command{
		Use:   "init-store",
		Short: "Create the persistence schema for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitStore()
		},
	}

	rootCmd.AddCommand(serveCmd, initStoreCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "optimedix").Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	signingKey := []byte(cfg.SessionSigningKey)
	if len(signingKey) == 0 {
		// Dev-only fallback; Validate rejects an empty key in production.
		signingKey = randomKey()
		logger.Warn().Msg("using an ephemeral session signing key; sessions will not survive restarts")
	}

	ctx := context.Background()

	kv, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("open store backend")
	}
	defer cleanup()
	st := store.New(kv)

	sessions := auth.NewManager(signingKey, cfg.SessionTTL)
	collector := metrics.NewCollector("optimedix")
	gateway := ai.NewGateway(ai.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.AITimeout,
	}, logger)
	images := blobstore.NewInMemoryImageStore()

	identitySvc := identity.NewService(identity.NewStoreRepo(st), sessions, logger)
	patientSvc := patient.NewService(patient.NewStoreRepo(st), logger)
	prescriptionSvc := prescription.NewService(prescription.NewStoreRepo(st), logger)
	screeningSvc := screening.NewService(
		screening.NewStoreRepo(st),
		gateway,
		&patientDirectory{patients: patientSvc},
		prescriptionSvc,
		images,
		collector,
		logger,
	)
	reportSvc := report.NewService(screeningSvc, patientSvc, prescriptionSvc)
	dashboardSvc := dashboard.NewService(screeningSvc, patientSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("1M", "32M"))
	e.Use(metrics.InstrumentHTTP(collector))
	e.Use(auth.SessionMiddleware(sessions, auth.PathSkipper(
		"/health",
		"/metrics",
		"/api/v1/auth/signup",
		"/api/v1/auth/login",
	)))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", metrics.Handler())

	apiV1 := e.Group("/api/v1")
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	screening.NewHandler(screeningSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	blobstore.NewImageHandler(images).RegisterRoutes(apiV1)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("backend", cfg.StoreBackend).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}

// runInitStore opens the configured backend once so file directories and
// database schemas exist before the first serve.
func runInitStore() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init %s store: %w", cfg.StoreBackend, err)
	}
	defer cleanup()

	logger.Info().Str("backend", cfg.StoreBackend).Msg("store initialized")
	return nil
}

// openStore builds the KV backend named by the config. The cleanup func
// releases any connections the backend holds.
func openStore(ctx context.Context, cfg *config.Config) (store.KV, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemory(), noop, nil
	case config.BackendFile:
		kv, err := store.NewFile(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case config.BackendRedis:
		kv, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return kv, func() { kv.Close() }, nil
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		kv, err := store.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return kv, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func randomKey() []byte {
	buf := make([]byte, 32)
	if _, err := crypto_rand.Read(buf); err != nil {
		panic(err)
	}
	return []byte(hex.EncodeToString(buf))
}

// patientDirectory adapts the patient service to the screening workflow's
// narrower view of the registry.
type patientDirectory struct {
	patients *patient.Service
}

func (d *patientDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := d.patients.Get(ctx, id)
	if errors.Is(err, patient.ErrPatientNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *patientDirectory) TouchLastScreening(ctx context.Context, id uuid.UUID, at time.Time) error {
	return d.patients.TouchLastScreening(ctx, id, at)
}
