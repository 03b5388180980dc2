// Package bootstrap builds the dependencies shared by the binaries from
// their parsed flags.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jusunglee/romanize/internal/anthropic"
	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/db/postgres"
	"github.com/jusunglee/romanize/internal/db/sqlite"
	"github.com/jusunglee/romanize/internal/google"
	"github.com/jusunglee/romanize/internal/llm"
)

// OpenRepository connects to PostgreSQL for postgres:// URLs and opens a
// SQLite file otherwise.
func OpenRepository(ctx context.Context, url string) (db.Repository, error) {
	if url == "" {
		return nil, errors.New("database URL is empty")
	}
	if db.IsPostgresURL(url) {
		repo, err := postgres.New(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		return repo, nil
	}
	repo, err := sqlite.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	return repo, nil
}

type LLMConfig struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GoogleAPIKey    string
	MaxTokens       int64
}

// NewLLMClient returns the configured client and the model it will call. An
// empty provider disables translation and returns a nil client.
func NewLLMClient(ctx context.Context, cfg LLMConfig) (llm.Client, string, error) {
	switch cfg.Provider {
	case "":
		return nil, "", nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", errors.New("anthropic-api-key is required when using anthropic provider")
		}
		c := anthropic.NewClient(cfg.AnthropicAPIKey, anthropic.Model(cfg.Model)).WithMaxTokens(cfg.MaxTokens)
		return c, c.Model(), nil
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, "", errors.New("google-api-key is required when using google provider")
		}
		c, err := google.NewClient(ctx, cfg.GoogleAPIKey, google.Model(cfg.Model))
		if err != nil {
			return nil, "", fmt.Errorf("creating Google client: %w", err)
		}
		return c, c.Model(), nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
