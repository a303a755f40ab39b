package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/db"
	"github.com/goliatone/go-intake/internal/middleware"
	"github.com/goliatone/go-intake/internal/server"
	"github.com/goliatone/go-intake/pkg/document"
	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/forms/formspg"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/intake/intakepg"
	"github.com/goliatone/go-intake/pkg/render"
)

func main() {
	if err := runServer(); err != nil {
		os.Exit(1)
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	// Stores
	registry := fieldtypes.NewRegistry()

	var (
		formRepo    forms.Repository
		trRepo      forms.TranslationRepository
		patientRepo intake.PatientRepository
		subRepo     intake.SubmissionRepository
		sigRepo     intake.SignatureRepository
		formOpts    []forms.ServiceOption
		intakeOpts  []intake.ServiceOption
	)
	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := formspg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate forms schema")
		}
		if err := intakepg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate intake schema")
		}
		formRepo = formspg.NewRepository(pool)
		trRepo = formspg.NewTranslationRepository(pool)
		patientRepo = intakepg.NewPatientRepository(pool)
		subRepo = intakepg.NewSubmissionRepository(pool)
		sigRepo = intakepg.NewSignatureRepository(pool)
		runInTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
		formOpts = append(formOpts, forms.WithTxRunner(runInTx))
		intakeOpts = append(intakeOpts, intake.WithTxRunner(runInTx))
		logger.Info().Msg("connected to database")
	} else {
		formRepo = forms.NewMemoryRepository()
		trRepo = forms.NewMemoryTranslationRepository()
		patientRepo = intake.NewMemoryPatientRepository()
		subRepo = intake.NewMemorySubmissionRepository()
		sigRepo = intake.NewMemorySignatureRepository()
		logger.Warn().Msg("DATABASE_URL not set, using in-memory stores")
	}

	// Services
	formSvc := forms.NewService(formRepo, trRepo, registry, formOpts...)
	intakeSvc := intake.NewService(formSvc, intake.NewCanonicalizer(registry), patientRepo, subRepo, sigRepo, intakeOpts...)

	docSvc := document.NewService(
		intakeSvc,
		formSvc,
		document.NewRenderer(registry),
		document.TextRasterizer{},
		document.DirStore{Dir: cfg.DocumentDir},
		document.WithLogger(logger),
	)

	// Renderer and preview, optionally themed
	renderer := render.New(render.WithRegistry(registry))
	var previewOpts []render.PreviewOption
	if cfg.ThemeManifest != "" {
		manifest, err := loadManifest(cfg.ThemeManifest)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.ThemeManifest).Msg("failed to load theme manifest")
		}
		previewOpts = append(previewOpts, render.WithTheme(&render.StaticSelector{Manifest: manifest}, manifest.Name, cfg.ThemeVariant))
	}
	preview, err := render.NewPreview(renderer, previewOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build preview renderer")
	}

	// Seed definitions on an empty store
	if cfg.SeedDir != "" {
		if err := seedDefinitions(ctx, logger, formSvc, cfg.SeedDir); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed form definitions")
		}
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")
	pages := e.Group("")

	cache := render.NewCache()
	server.NewFormsHandler(formSvc, renderer, preview, cache).RegisterRoutes(apiV1)
	server.NewIntakeHandler(intakeSvc, formSvc, preview, docSvc, cache).RegisterRoutes(apiV1, pages)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Start + graceful shutdown
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// seedDefinitions loads definition files from dir into an empty store,
// publishing and activating each. A store that already has published
// definitions is left alone.
func seedDefinitions(ctx context.Context, logger zerolog.Logger, formSvc *forms.Service, dir string) error {
	existing, err := formSvc.AllPublished(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		file, err := forms.ParseDefinitionFile(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		in, err := file.CreateInput()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		def, err := formSvc.CreateDraft(ctx, in)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		bundles, err := file.Bundles()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for lang, bundle := range bundles {
			if _, err := formSvc.AddTranslation(ctx, def.ID, lang, bundle); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		if _, err := formSvc.Publish(ctx, def.ID, "seed", true); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info().Str("name", def.Name).Str("category", string(def.Category)).Msg("seeded form definition")
	}
	return nil
}

func loadManifest(path string) (*theme.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest theme.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse theme manifest: %w", err)
	}
	return &manifest, nil
}
