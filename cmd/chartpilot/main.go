// chartpilot serves the chart-generation HTTP API: it loads configuration,
// connects to Postgres, wires every pipeline collaborator, and starts the
// job registry's sweep loop alongside the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"

	"github.com/tarsy-labs/chartpilot/pkg/api"
	"github.com/tarsy-labs/chartpilot/pkg/catalog"
	"github.com/tarsy-labs/chartpilot/pkg/config"
	"github.com/tarsy-labs/chartpilot/pkg/database"
	"github.com/tarsy-labs/chartpilot/pkg/descindex"
	"github.com/tarsy-labs/chartpilot/pkg/errorhandler"
	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/masking"
	"github.com/tarsy-labs/chartpilot/pkg/pipeline"
	"github.com/tarsy-labs/chartpilot/pkg/query"
	"github.com/tarsy-labs/chartpilot/pkg/registry"
	"github.com/tarsy-labs/chartpilot/pkg/slack"
	"github.com/tarsy-labs/chartpilot/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupLogger installs the process-wide slog handler. LOG_FORMAT=json
// selects structured JSON output for production log aggregation; anything
// else (the default) selects tint's colorized, human-readable console
// output for local development.
func setupLogger() {
	if getEnv("LOG_FORMAT", "") == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
		return
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))
}

func main() {
	setupLogger()

	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", envPath)
	}

	slog.Info("starting chartpilot", "version", version.Full(), "config_dir", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()
	slog.Info("connected to postgres", "host", dbConfig.Host, "database", dbConfig.Database)

	clock := clockwork.NewRealClock()

	// Catalog introspector.
	pgQuerier := catalog.NewPgQuerier(dbClient.Pool(), "public")
	introspector := catalog.New(pgQuerier, catalog.Config{Clock: clock})

	// Descriptive index. A hash embedder needs no external provider;
	// swap in a real one once a provider is wired for embeddings.
	descIndexPath := getEnv("DESCINDEX_PATH", "")
	descIdx, err := descindex.Open(descIndexPath, descindex.NewHashEmbedder(64), descindex.Config{TTL: 7 * 24 * time.Hour})
	if err != nil {
		slog.Error("failed to open descriptive index", "error", err)
		os.Exit(1)
	}
	defer descIdx.Close()

	// LLM gateway, instrumented per provider so every call is observed in
	// pkg/metrics regardless of which backend handles it.
	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		slog.Error("failed to build LLM gateway", "error", err)
		os.Exit(1)
	}

	// Query engine.
	queryEngine := query.New(query.Config{
		Store:    dbClient,
		Gateway:  gateway,
		CacheTTL: query.DefaultResultTTL,
		Clock:    clock,
	})

	// Error handler.
	errHandler := errorhandler.NewHandler(
		errorhandler.NewIdempotencyStore(5*time.Minute, clock),
		errorhandler.NewRecoveryPolicy(
			errorhandler.NewDatasetCache(10*time.Minute, clock),
			errorhandler.NewSynonymMapper(),
		),
		errorhandler.NewRouter(),
		clock,
	)

	// Job registry, with its background sweep service.
	reg := registry.New(cfg.Registry.JobTTL, clock)
	sweepInterval := cfg.Registry.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = registry.DefaultSweepInterval
	}
	sweepSvc := registry.NewService(reg, sweepInterval)
	sweepSvc.Start(ctx)
	defer sweepSvc.Stop()

	// Secret redaction, wired into the orchestrator's error-reporting path.
	maskingSvc := masking.NewService(cfg.Masking)

	// Slack job-lifecycle notifications. NewService returns nil when no
	// channel is configured, and every Service method is nil-safe, so the
	// orchestrator needs no branch on whether notifications are enabled.
	var slackToken string
	if cfg.Notifications.Enabled() {
		slackToken = os.Getenv(cfg.Notifications.SlackTokenEnv)
	}
	notifier := slack.NewService(slack.ServiceConfig{
		Token:        slackToken,
		Channel:      cfg.Notifications.SlackChannel,
		DashboardURL: cfg.Notifications.DashboardBaseURL,
	})

	// Pipeline orchestrator, composing the catalog, descriptive index,
	// query engine, LLM gateway, error handler, and job registry.
	orchestrator := pipeline.New(reg, introspector, queryEngine, gateway, errHandler, clock)
	orchestrator.Masker = maskingSvc
	orchestrator.DescIndex = descIdx
	orchestrator.Notifier = notifier

	// Config directory watcher: an operator editing chartpilot.yaml or
	// llm-providers.yaml on disk doesn't require a restart. Reload only
	// invalidates the catalog cache and recompiles masking patterns —
	// collaborators built once from provider credentials or listen
	// address (the LLM gateway, the HTTP server) are unaffected until the
	// next restart.
	cfgWatcher, err := config.NewWatcher(*configDir, func(reloaded *config.Config) {
		introspector.Invalidate()
		maskingSvc.Reload(reloaded.Masking)
	})
	if err != nil {
		slog.Warn("failed to start config watcher, continuing without hot reload", "error", err)
	} else {
		cfgWatcher.Start(ctx)
		defer cfgWatcher.Stop()
	}

	server := api.NewServer(cfg.API, dbClient, introspector, reg, orchestrator, clock)

	listenAddr := cfg.API.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", listenAddr)
		if err := server.Start(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			slog.Error("http server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during graceful shutdown", "error", err)
	}
}

// buildGateway selects the default LLM provider from cfg and builds its
// backend, instrumented under the provider's configured name.
func buildGateway(ctx context.Context, cfg *config.Config) (llmgateway.Gateway, error) {
	providerName := cfg.Defaults.LLMProvider
	provider, err := cfg.GetLLMProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("resolving default LLM provider %q: %w", providerName, err)
	}

	apiKey := os.Getenv(provider.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %q for provider %q is not set", provider.APIKeyEnv, providerName)
	}

	var backend llmgateway.Gateway
	switch provider.Type {
	case config.LLMProviderTypeAnthropic:
		backend = llmgateway.NewAnthropicBackend(apiKey, anthropic.Model(provider.Model))
	case config.LLMProviderTypeGoogle:
		genaiBackend, err := llmgateway.NewGenAIBackend(ctx, apiKey, provider.Model)
		if err != nil {
			return nil, fmt.Errorf("building genai backend: %w", err)
		}
		backend = genaiBackend
	default:
		return nil, fmt.Errorf("unsupported LLM provider type %q", provider.Type)
	}

	return llmgateway.Instrumented(backend, providerName), nil
}
