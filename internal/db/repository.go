package db

import (
	"context"
	"time"
)

// Transliteration is one recorded call to the engine.
type Transliteration struct {
	ID             int64
	Original       string
	Transliterated string
	Script         string
	Status         string
	Source         string
	CreatedAt      time.Time
}

// CachedTranslation is an LLM translation keyed by source text and target language.
type CachedTranslation struct {
	ID               int64
	SourceText       string
	TargetLanguage   string
	Translated       string
	DetectedLanguage string
	Provider         string
	Model            string
	CreatedAt        time.Time
}

// Feedback is a user-submitted correction to a transliteration.
type Feedback struct {
	ID             int64
	Text           string
	Script         string
	Transliterated string
	Suggestion     string
	CreatedAt      time.Time
}

// Parameter structs for repository methods

type RecordTransliterationParams struct {
	Original       string
	Transliterated string
	Script         string
	Status         string
	Source         string
}

type GetCachedTranslationParams struct {
	SourceText     string
	TargetLanguage string
}

type CacheTranslationParams struct {
	SourceText       string
	TargetLanguage   string
	Translated       string
	DetectedLanguage string
	Provider         string
	Model            string
}

type CreateFeedbackParams struct {
	Text           string
	Script         string
	Transliterated string
	Suggestion     string
}

// Repository defines the interface for database operations
type Repository interface {
	// History
	RecordTransliteration(ctx context.Context, arg RecordTransliterationParams) (Transliteration, error)
	ListRecentTransliterations(ctx context.Context, limit int32) ([]Transliteration, error)

	// Translation cache. GetCachedTranslation returns ErrNoRows on a miss.
	GetCachedTranslation(ctx context.Context, arg GetCachedTranslationParams) (CachedTranslation, error)
	CacheTranslation(ctx context.Context, arg CacheTranslationParams) error

	// Feedback
	CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (Feedback, error)
	ListFeedback(ctx context.Context, limit int32) ([]Feedback, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}
