package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/bdougie/videoextend/internal/analyzer"
	"github.com/bdougie/videoextend/internal/answer"
	"github.com/bdougie/videoextend/internal/backend"
	"github.com/bdougie/videoextend/internal/config"
	"github.com/bdougie/videoextend/internal/frames"
	"github.com/bdougie/videoextend/internal/logging"
	"github.com/bdougie/videoextend/internal/metrics"
	"github.com/bdougie/videoextend/internal/prompt"
	"github.com/bdougie/videoextend/internal/storage"
)

// applyFlags overrides config values with the flags set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags flagValues) {
	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.Backends = flags.backends
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("parallel-backends") {
		cfg.ParallelBackends = flags.parallelBackends
	}
	if changed("timeout") {
		cfg.BackendTimeout = flags.timeout
	}
	if changed("rate-interval") {
		cfg.RateInterval = flags.rateInterval
	}
	if changed("template") {
		cfg.Template = flags.template
	}
	if changed("template-dir") {
		cfg.TemplateDir = flags.templateDir
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
}

// newRouter registers every supported provider behind one media cache
func newRouter(cfg *config.Config, logger *slog.Logger) *backend.Router {
	media := backend.NewMediaStore(cfg.MediaCacheTTL)

	router := backend.NewRouter()
	router.Register(backend.ProviderOpenRouter, backend.NewOpenRouterGenerator(backend.OpenRouterOpts{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Media:   media,
	}))
	router.Register(backend.ProviderGemini, backend.NewGeminiGenerator(backend.GeminiOpts{
		APIKey: cfg.GeminiAPIKey,
		Media:  media,
	}))
	router.Register(backend.ProviderOllama, backend.NewOllamaGenerator(backend.OllamaOpts{
		Logger:  logger,
		BaseURL: cfg.OllamaBaseURL,
		Port:    cfg.OllamaPort,
	}))
	return router
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func run(ctx context.Context, cmd *cobra.Command, root string, flags flagValues) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Console: cmd.ErrOrStderr(),
		Verbose: flags.verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	logger = logger.With("run_id", uuid.NewString())
	logger.Debug("configuration loaded",
		"backends", cfg.Backends,
		"template", cfg.Template,
		"template_dir", cfg.TemplateDir,
		"workers", cfg.Workers,
		"parallel_backends", cfg.ParallelBackends,
		"timeout", cfg.BackendTimeout)

	m := metrics.New()

	querier := analyzer.NewQuerier(newRouter(cfg, logger), analyzer.QuerierOpts{
		Backends:  cfg.Backends,
		Timeout:   cfg.BackendTimeout,
		Parallel:  cfg.ParallelBackends,
		Limiter:   newLimiter(cfg.RateInterval),
		Extractor: answer.NewTagExtractor(answer.DefaultTag, logger),
		Metrics:   m,
		Logger:    logger,
	})

	processor := analyzer.NewProcessor(analyzer.ProcessorConfig{
		Finder:   frames.NewLocator(logger),
		Prompts:  prompt.NewBuilder(prompt.NewDirLoader(cfg.TemplateDir), cfg.Template),
		Querier:  querier,
		Storage:  storage.NewReportWriter(),
		Workers:  cfg.Workers,
		Metrics:  m,
		Logger:   logger,
		Progress: cmd.ErrOrStderr(),
	})

	_, runErr := processor.Run(ctx, root)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}

	return runErr
}
