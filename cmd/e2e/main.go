// e2e runs the translation path against a live LLM provider and a throwaway
// SQLite database, then checks that a repeat request is served from cache.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/romanize/internal/bootstrap"
	"github.com/jusunglee/romanize/internal/db/sqlite"
	"github.com/jusunglee/romanize/internal/logger"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
)

type probe struct {
	text           string
	transliterated string
	language       string
}

var probes = []probe{
	{"नमस्ते", "namaste", "hi"},
	{"안녕", "annyeong", "ko"},
	{"你好", "nihao", "zh"},
	{"كتاب", "ktab", "ar"},
}

func main() {
	if err := run(); err != nil {
		slog.Error("E2E FAILED", "error", err)
		os.Exit(1)
	}
	slog.Info("E2E PASSED")
}

func run() error {
	_ = godotenv.Load()

	llmProvider := requireEnv("LLM_PROVIDER")

	log := logger.New()
	ctx := context.Background()

	log.Info("Phase 1: Setting up DB and LLM client...")
	dbPath := fmt.Sprintf("/tmp/romanize-e2e-%d.db", time.Now().UnixNano())
	defer os.Remove(dbPath)

	repo, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("creating temp SQLite: %w", err)
	}
	defer repo.Close()

	llmClient, model, err := bootstrap.NewLLMClient(ctx, bootstrap.LLMConfig{
		Provider:        llmProvider,
		Model:           os.Getenv("LLM_MODEL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
	})
	if err != nil {
		return err
	}
	if llmClient == nil {
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", llmProvider)
	}

	engine := transliteration.Default()
	translator := translation.NewTranslator(llmClient, repo, engine, llmProvider, model, log)

	log.Info("Phase 2: Translating probes...", "provider", llmProvider, "model", model)
	for _, p := range probes {
		callCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		got, err := translator.Translate(callCtx, p.text, "en")
		cancel()
		if err != nil {
			return fmt.Errorf("translating %s: %w", p.text, err)
		}
		if got.Cached {
			return fmt.Errorf("%s: first request unexpectedly cached", p.text)
		}
		if got.Transliterated != p.transliterated {
			return fmt.Errorf("%s: transliterated %q, want %q", p.text, got.Transliterated, p.transliterated)
		}
		if got.DetectedLanguage != p.language {
			log.Warn("unexpected detected language", "text", p.text, "got", got.DetectedLanguage, "want", p.language)
		}
		log.Info("translated", "text", p.text, "translated", got.Translated, "language", got.DetectedLanguage)
	}

	log.Info("Phase 3: Verifying cache...")
	for _, p := range probes {
		got, err := translator.Translate(ctx, p.text, "en")
		if err != nil {
			return fmt.Errorf("re-translating %s: %w", p.text, err)
		}
		if !got.Cached {
			return fmt.Errorf("%s: second request was not served from cache", p.text)
		}
	}

	log.Info("all verifications passed", "probes", len(probes))
	return nil
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		slog.Error("required environment variable not set", "key", key)
		os.Exit(1)
	}
	return val
}
