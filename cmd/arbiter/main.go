// Command arbiter runs the LLM-as-judge comparison service: an HTTP
// API that compares two pre-generated answers with a judge model and
// returns a classified verdict.
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

	_ "github.com/joho/godotenv/autoload"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/time/rate"

	"github.com/arbiterhq/arbiter/infrastructure/catalog"
	"github.com/arbiterhq/arbiter/infrastructure/llm"
	"github.com/arbiterhq/arbiter/infrastructure/metrics"
	"github.com/arbiterhq/arbiter/infrastructure/prompts"
	"github.com/arbiterhq/arbiter/internal/application"
	"github.com/arbiterhq/arbiter/internal/server"
)

type config struct {
	Addr string `env:"ADDR,default=:8000"`

	// CatalogPath points at the hot-reloadable model configuration.
	CatalogPath string `env:"MODELS_CONFIG_PATH,default=models_config.json"`

	// PromptsPath optionally overrides the embedded prompt templates.
	PromptsPath string `env:"PROMPTS_CONFIG_PATH"`

	// TimeoutSeconds bounds each comparison and each batch.
	TimeoutSeconds int `env:"COMPARISON_TIMEOUT_SECONDS,default=30"`

	// RequestsPerSecond and Burst configure per-client LLM rate
	// limiting. Zero disables the limiter.
	RequestsPerSecond float64 `env:"LLM_REQUESTS_PER_SECOND,default=0"`
	Burst             int     `env:"LLM_BURST,default=1"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		slog.Error("processing config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting arbiter", "version", server.Version, "addr", cfg.Addr)

	cat := catalog.New(cfg.CatalogPath, logger)
	promptStore := prompts.New(cfg.PromptsPath, logger)
	collector := metrics.NewPrometheusMetrics(nil)

	factory := llm.NewFactory(llm.FactoryConfig{
		Catalog:           cat,
		Metrics:           collector,
		Logger:            logger,
		RequestsPerSecond: rate.Limit(cfg.RequestsPerSecond),
		Burst:             cfg.Burst,
	})

	engine := application.NewComparisonEngine(application.EngineConfig{
		Producer: application.NewAnswerProducer(factory, promptStore, logger),
		Judge:    application.NewJudgeInvoker(factory, promptStore, cat, logger),
		Parser:   application.NewResponseParser(),
		Metrics:  collector,
		Logger:   logger,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	})

	router := server.NewRouter(server.New(engine, cat, logger))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
