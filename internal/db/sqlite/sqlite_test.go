package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransliterationHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.RecordTransliteration(ctx, db.RecordTransliterationParams{
		Original:       "كتاب",
		Transliterated: "ktab",
		Script:         "arabic",
		Status:         "ok",
		Source:         "web",
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "ktab", first.Transliterated)
	assert.WithinDuration(t, time.Now(), first.CreatedAt, time.Minute)

	_, err = repo.RecordTransliteration(ctx, db.RecordTransliterationParams{
		Original:       "hello",
		Transliterated: "hello",
		Script:         "latin",
		Status:         "unsupported_script",
		Source:         "cli",
	})
	require.NoError(t, err)

	recent, err := repo.ListRecentTransliterations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "latin", recent[0].Script, "newest first")
	assert.Equal(t, "arabic", recent[1].Script)

	limited, err := repo.ListRecentTransliterations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTranslationCache(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	key := db.GetCachedTranslationParams{SourceText: "مرحبا", TargetLanguage: "en"}

	_, err := repo.GetCachedTranslation(ctx, key)
	assert.True(t, db.IsNoRows(err))

	require.NoError(t, repo.CacheTranslation(ctx, db.CacheTranslationParams{
		SourceText:       "مرحبا",
		TargetLanguage:   "en",
		Translated:       "hi",
		DetectedLanguage: "ar",
		Provider:         "anthropic",
		Model:            "m1",
	}))

	got, err := repo.GetCachedTranslation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Translated)
	assert.Equal(t, "ar", got.DetectedLanguage)

	// Re-caching the same key overwrites.
	require.NoError(t, repo.CacheTranslation(ctx, db.CacheTranslationParams{
		SourceText:       "مرحبا",
		TargetLanguage:   "en",
		Translated:       "hello",
		DetectedLanguage: "ar",
		Provider:         "google",
		Model:            "m2",
	}))
	got, err = repo.GetCachedTranslation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Translated)
	assert.Equal(t, "google", got.Provider)

	_, err = repo.GetCachedTranslation(ctx, db.GetCachedTranslationParams{SourceText: "مرحبا", TargetLanguage: "fr"})
	assert.True(t, db.IsNoRows(err))
}

func TestFeedback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	f, err := repo.CreateFeedback(ctx, db.CreateFeedbackParams{
		Text:           "नमस्ते",
		Script:         "devanagari",
		Transliterated: "namaste",
		Suggestion:     "namastē",
	})
	require.NoError(t, err)
	assert.NotZero(t, f.ID)
	assert.Equal(t, "namastē", f.Suggestion)

	list, err := repo.ListFeedback(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)
}

func TestWithTx(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx db.Repository) error {
		_, err := tx.CreateFeedback(ctx, db.CreateFeedbackParams{Text: "a", Script: "arabic", Transliterated: "a", Suggestion: "b"})
		require.NoError(t, err)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	list, err := repo.ListFeedback(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list, "rolled back")

	err = repo.WithTx(ctx, func(tx db.Repository) error {
		_, err := tx.RecordTransliteration(ctx, db.RecordTransliterationParams{Original: "x", Transliterated: "x", Script: "latin", Status: "unsupported_script"})
		return err
	})
	require.NoError(t, err)

	recent, err := repo.ListRecentTransliterations(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestPing(t *testing.T) {
	repo, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	assert.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, repo.Close())
	assert.Error(t, repo.Ping(context.Background()))
}
