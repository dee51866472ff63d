package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alasharulary/alash/internal/adapters/clients"
	"github.com/alasharulary/alash/internal/adapters/clients/acl"
	"github.com/alasharulary/alash/internal/adapters/content"
	"github.com/alasharulary/alash/internal/adapters/gmaps"
	"github.com/alasharulary/alash/internal/adapters/http"
	"github.com/alasharulary/alash/internal/adapters/http/handlers"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/metrics"
	"github.com/alasharulary/alash/internal/platform/telemetry"
	"github.com/alasharulary/alash/internal/ports"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	// 1. Load and validate configuration (fail fast)
	cfg, err := loadConfig(opts.profile)
	if err != nil {
		return err
	}

	// 2. Initialize logging
	logger := newLogger(cfg)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.Bool("maps_key", cfg.Maps.HasKey()),
	)

	// 3. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	recorder, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// 4. Load bundled content
	store, err := content.Load()
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	catalog := app.NewCatalogService(app.CatalogServiceConfig{
		Store:    store,
		Recorder: recorder,
		Logger:   logger,
	})

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    store,
		Recorder: recorder,
		Logger:   logger,
	})

	// 5. Maps script loading through the instrumented client (ACL pattern)
	httpClient, err := clients.New(&clients.Config{
		ServiceName: "maps-script",
		Timeout:     cfg.Client.Timeout,
		UserAgent:   cfg.Client.UserAgent,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	registry := app.NewScriptRegistry(acl.NewScriptClient(httpClient, logger), logger)

	loaders := app.NewMapLoaders(app.MapLoaderConfig{
		APIKey:    cfg.Maps.Key(),
		ScriptURL: cfg.Maps.ScriptURL,
		Registry:  registry,
		Recorder:  recorder,
		Logger:    logger,
	})
	defer loaders.CloseAll()

	// 6. Health checks: content is required, map scripts only degrade
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(catalog); err != nil {
		return fmt.Errorf("registering content health check: %w", err)
	}

	for _, lang := range sortedLanguages(loaders) {
		if err := healthRegistry.Register(loaders.For(lang)); err != nil {
			return fmt.Errorf("registering map loader health check: %w", err)
		}
	}

	// 7. Sessions
	sessions := app.NewSessionStore(app.SessionStoreConfig{
		Content:       store,
		Quotes:        quotes,
		Loaders:       loaders,
		NewSurface:    gmaps.NewSceneSurface,
		TTL:           cfg.Session.TTL,
		QuoteInterval: cfg.Session.QuoteInterval,
		MaxSessions:   cfg.Session.MaxSessions,
		Recorder:      recorder,
		Logger:        logger,
	})

	// 8. HTTP server and routes
	server := http.New(&cfg.Server, &cfg.CORS, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:    logger,
		AppConfig: &cfg.App,
		Session:   &cfg.Session,
		Sessions:  sessions,
		HealthHandler: handlers.NewHealthHandler(
			healthRegistry,
			handlers.NewBuildInfo(Version, Commit, BuildTime),
			recorder.Handler(),
		),
		CatalogHandler: handlers.NewCatalogHandler(catalog, loaders, gmaps.NewSceneSurface),
		SessionHandler: handlers.NewSessionHandler(catalog),
		PageHandler:    handlers.NewPageHandler(catalog, cfg.Session.QuoteInterval),
		Timeout:        cfg.Server.RequestTimeout,
	})

	// 9. Run until a shutdown signal arrives or a component fails
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	loaders.StartAll(gctx)

	g.Go(func() error { return sessions.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

// sortedLanguages returns the loader languages in their supported order so
// health checks register deterministically.
func sortedLanguages(loaders app.MapLoaders) []domain.Language {
	langs := make([]domain.Language, 0, len(loaders))
	for _, lang := range domain.Languages {
		if _, ok := loaders[lang]; ok {
			langs = append(langs, lang)
		}
	}
	return langs
}
