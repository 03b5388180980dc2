package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/jusunglee/romanize/internal/bootstrap"
	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/db/postgres"
	"github.com/jusunglee/romanize/internal/jobs"
	"github.com/jusunglee/romanize/internal/logger"
	"github.com/jusunglee/romanize/internal/metrics"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/jusunglee/romanize/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
)

//go:embed all:dist
var staticFiles embed.FS

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("romanize-web")

	var (
		port            = fs_.Int64Long("port", 3000, "HTTP server port")
		databaseURL     = fs_.StringLong("database-url", "", "PostgreSQL URL or SQLite path for history, feedback and the translation cache (optional)")
		rulesFile       = fs_.StringLong("rules-file", "", "YAML rule file extending or overriding the built-in tables")
		llmProvider     = fs_.StringEnumLong("llm-provider", "LLM provider for translation", "none", "anthropic", "google")
		llmModel        = fs_.StringLong("llm-model", "", "LLM model name (provider default if empty)")
		anthropicAPIKey = fs_.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs_.StringLong("google-api-key", "", "Google API key")
		allowedOrigins  = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		adminPassword   = fs_.StringLong("admin-password", "", "Password for the admin feedback endpoint (disabled if empty)")
		rateLimit       = fs_.IntLong("rate-limit", 60, "POST requests allowed per IP per minute")
		externalWorker  = fs_.BoolLong("external-worker", "Leave background translation jobs to cmd/worker instead of processing them here")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	engine, err := transliteration.NewFromRuleFile(*rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	log.Info("transliteration engine ready", "scripts", engine.Scripts(), "rules_file", *rulesFile)

	provider := *llmProvider
	if provider == "none" {
		provider = ""
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	llmClient, model, err := bootstrap.NewLLMClient(ctx, bootstrap.LLMConfig{
		Provider:        provider,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}

	var repo db.Repository
	if *databaseURL != "" {
		repo, err = bootstrap.OpenRepository(ctx, *databaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
		log.InfoContext(ctx, "connected to database", "postgres", db.IsPostgresURL(*databaseURL))
	} else {
		log.WarnContext(ctx, "no database configured, history and feedback are disabled")
	}

	var translator *translation.Translator
	if llmClient != nil {
		translator = translation.NewTranslator(llmClient, repo, engine, provider, model, log)
		log.InfoContext(ctx, "translation enabled", "provider", provider, "model", model)
	}

	cfg := web.Config{
		Engine:         engine,
		Repo:           repo,
		Log:            log,
		AllowedOrigins: splitOrigins(*allowedOrigins),
		AdminPassword:  *adminPassword,
		RateLimit:      *rateLimit,
	}
	if translator != nil {
		cfg.Translator = translator
	}

	var riverClient *river.Client[pgx.Tx]
	if pg, ok := repo.(*postgres.Repository); ok {
		go reportPoolStats(ctx, pg)

		if translator != nil {
			riverClient, err = startRiver(ctx, pg, translator, !*externalWorker, log)
			if err != nil {
				return err
			}
			cfg.Queue = jobs.NewQueue(riverClient)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler(repo))

	apiHandler := web.NewRouter(cfg).Handler()
	staticHandler, err := newStaticHandler()
	if err != nil {
		return err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}
		staticHandler.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	if riverClient != nil && !*externalWorker {
		// Let in-flight translation jobs finish.
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			log.Error("river client stop error", "error", err)
		}
	}

	return nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// reportPoolStats exports pgxpool stats as Prometheus gauges until ctx ends.
func reportPoolStats(ctx context.Context, repo *postgres.Repository) {
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
}

// startRiver migrates River's tables and returns a client for enqueueing
// translations. With embedded workers it also processes them.
func startRiver(ctx context.Context, repo *postgres.Repository, translator *translation.Translator, embedded bool, log *slog.Logger) (*river.Client[pgx.Tx], error) {
	if err := jobs.Migrate(ctx, repo.Pool()); err != nil {
		return nil, err
	}

	var workers *river.Workers
	if embedded {
		workers = river.NewWorkers()
		river.AddWorker(workers, web.NewTranslateWorker(translator, log))
	}

	riverClient, err := jobs.NewClient(repo.Pool(), workers, 2, log)
	if err != nil {
		return nil, err
	}
	if embedded {
		if err := riverClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting river client: %w", err)
		}
	}
	return riverClient, nil
}

func healthHandler(repo db.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if repo != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := repo.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"degraded","database":%q}`, err.Error())
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// newStaticHandler serves the embedded playground page, falling back to
// index.html for unknown paths.
func newStaticHandler() (http.Handler, error) {
	distFS, err := fs.Sub(staticFiles, "dist")
	if err != nil {
		return nil, fmt.Errorf("creating sub filesystem: %w", err)
	}
	fileServer := http.FileServer(http.FS(distFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}
		if _, err := fs.Stat(distFS, strings.TrimPrefix(path, "/")); err == nil {
			w.Header().Set("Cache-Control", "public, s-maxage=60, max-age=0")
			fileServer.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, s-maxage=60, max-age=0")
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	}), nil
}
