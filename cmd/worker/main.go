package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/romanize/internal/bootstrap"
	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/db/postgres"
	"github.com/jusunglee/romanize/internal/health"
	"github.com/jusunglee/romanize/internal/jobs"
	"github.com/jusunglee/romanize/internal/logger"
	"github.com/jusunglee/romanize/internal/metrics"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/jusunglee/romanize/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/riverqueue/river"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("romanize-worker")
	var (
		databaseURL     = fs.StringLong("database-url", "", "PostgreSQL connection URL")
		rulesFile       = fs.StringLong("rules-file", "", "YAML rule file extending or overriding the built-in tables")
		llmProvider     = fs.StringEnumLong("llm-provider", "LLM provider for translation", "anthropic", "google")
		llmModel        = fs.StringLong("llm-model", "", "LLM model name (provider default if empty)")
		anthropicAPIKey = fs.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs.StringLong("google-api-key", "", "Google API key")
		maxWorkers      = fs.IntLong("max-workers", 4, "Concurrent translation jobs")
		metricsPort     = fs.IntLong("metrics-port", 9090, "Port for /health and /metrics")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if !db.IsPostgresURL(*databaseURL) {
		return errors.New("database-url must be a PostgreSQL URL")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	log := logger.New()

	engine, err := transliteration.NewFromRuleFile(*rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	llmClient, model, err := bootstrap.NewLLMClient(ctx, bootstrap.LLMConfig{
		Provider:        *llmProvider,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}

	repo, err := postgres.New(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer repo.Close()

	if err := jobs.Migrate(ctx, repo.Pool()); err != nil {
		return err
	}

	translator := translation.NewTranslator(llmClient, repo, engine, *llmProvider, model, log)
	workers := river.NewWorkers()
	river.AddWorker(workers, web.NewTranslateWorker(translator, log))

	riverClient, err := jobs.NewClient(repo.Pool(), workers, *maxWorkers, log)
	if err != nil {
		return err
	}

	healthServer := health.New(*metricsPort, map[string]health.Check{"database": repo.Ping})
	go func() {
		log.InfoContext(ctx, "starting metrics server", "port", *metricsPort)
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	// Periodically export pgxpool stats as Prometheus gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s := repo.Pool().Stat()
				metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
				metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
				metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
				metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
			case <-ctx.Done():
				return
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	log.InfoContext(ctx, "worker starting", "provider", *llmProvider, "model", model, "max_workers", *maxWorkers)
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river client: %w", err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := riverClient.Stop(stopCtx); err != nil {
		log.Error("river client stop error", "error", err)
	}
	if err := healthServer.Shutdown(stopCtx); err != nil {
		log.Error("metrics server shutdown error", "error", err)
	}
	log.Info("worker stopped")
	return nil
}
