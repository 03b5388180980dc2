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

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jusunglee/romanize/internal/bootstrap"
	"github.com/jusunglee/romanize/internal/bot"
	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/envsetup"
	"github.com/jusunglee/romanize/internal/health"
	"github.com/jusunglee/romanize/internal/logger"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"
)

const envFile = ".env"

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup(envFile) && os.Getenv("DISCORD_TOKEN") == "" {
		saved, err := envsetup.Run(envFile)
		if err != nil {
			return fmt.Errorf("running env setup: %w", err)
		}
		if !saved {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load(envFile)

	fs := ff.NewFlagSet("romanize-bot")
	var (
		discordToken    = fs.StringLong("discord-token", "", "Discord bot token")
		guildID         = fs.StringLong("discord-guild-id", "", "Register commands to this guild only (instant updates)")
		databaseURL     = fs.StringLong("database-url", "", "PostgreSQL URL or SQLite path for history, feedback and the translation cache (optional)")
		rulesFile       = fs.StringLong("rules-file", "", "YAML rule file extending or overriding the built-in tables")
		llmProvider     = fs.StringEnumLong("llm-provider", "LLM provider for /translate", "none", "anthropic", "google")
		llmModel        = fs.StringLong("llm-model", "", "LLM model name (provider default if empty)")
		anthropicAPIKey = fs.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs.StringLong("google-api-key", "", "Google API key")
		websiteURL      = fs.StringLong("website-url", "", "Web server base URL to forward feedback to (disabled if empty)")
		rateLimit       = fs.IntLong("rate-limit", 5, "Commands allowed per user per minute")
		healthPort      = fs.IntLong("health-port", 8080, "Port for /health and /metrics")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	engine, err := transliteration.NewFromRuleFile(*rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	provider := *llmProvider
	if provider == "none" {
		provider = ""
	}
	llmClient, model, err := bootstrap.NewLLMClient(ctx, bootstrap.LLMConfig{
		Provider:        provider,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}

	checks := map[string]health.Check{}
	var repo db.Repository
	if *databaseURL != "" {
		repo, err = bootstrap.OpenRepository(ctx, *databaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
		checks["database"] = repo.Ping
		log.InfoContext(ctx, "connected to database")
	}

	var translator bot.Translator
	if llmClient != nil {
		translator = translation.NewTranslator(llmClient, repo, engine, provider, model, log)
		log.InfoContext(ctx, "translation enabled", "provider", provider, "model", model)
	}

	dg, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	b := bot.New(
		bot.NewLogger(log),
		bot.NewDiscordSession(dg),
		engine,
		repo,
		translator,
		bot.NewRateLimiter(*rateLimit, time.Minute),
		bot.Config{GuildID: *guildID, Website: bot.NewWebsiteClient(*websiteURL)},
	)

	healthServer := health.New(*healthPort, checks)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting health server", "port", *healthPort)
		return healthServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := b.Run(gctx)
		cancel(errors.New("bot stopped"))
		return err
	})
	return g.Wait()
}
