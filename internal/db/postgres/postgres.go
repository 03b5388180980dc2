package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/romanize/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	db   dbtx
}

// New connects to databaseURL and applies the schema.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{pool: pool, db: pool}, nil
}

// Pool exposes the connection pool for stats reporting.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// Roll back before re-panicking so the connection goes back to the pool.
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	err = fn(&Repository{pool: r.pool, db: tx})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// History methods

func (r *Repository) RecordTransliteration(ctx context.Context, arg db.RecordTransliterationParams) (db.Transliteration, error) {
	var t db.Transliteration
	err := r.db.QueryRow(ctx, `
		INSERT INTO transliterations (original, transliterated, script, status, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, original, transliterated, script, status, source, created_at
	`, arg.Original, arg.Transliterated, arg.Script, arg.Status, arg.Source).Scan(
		&t.ID, &t.Original, &t.Transliterated, &t.Script, &t.Status, &t.Source, &t.CreatedAt,
	)
	return t, err
}

func (r *Repository) ListRecentTransliterations(ctx context.Context, limit int32) ([]db.Transliteration, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, original, transliterated, script, status, source, created_at
		FROM transliterations ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Transliteration, error) {
		var t db.Transliteration
		err := row.Scan(&t.ID, &t.Original, &t.Transliterated, &t.Script, &t.Status, &t.Source, &t.CreatedAt)
		return t, err
	})
}

// Translation cache methods

func (r *Repository) GetCachedTranslation(ctx context.Context, arg db.GetCachedTranslationParams) (db.CachedTranslation, error) {
	var c db.CachedTranslation
	err := r.db.QueryRow(ctx, `
		SELECT id, source_text, target_language, translated, detected_language, provider, model, created_at
		FROM translation_cache
		WHERE source_text = $1 AND target_language = $2
	`, arg.SourceText, arg.TargetLanguage).Scan(
		&c.ID, &c.SourceText, &c.TargetLanguage, &c.Translated, &c.DetectedLanguage, &c.Provider, &c.Model, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.CachedTranslation{}, db.ErrNoRows
	}
	return c, err
}

func (r *Repository) CacheTranslation(ctx context.Context, arg db.CacheTranslationParams) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO translation_cache (source_text, target_language, translated, detected_language, provider, model)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_text, target_language)
		DO UPDATE SET translated = EXCLUDED.translated,
			detected_language = EXCLUDED.detected_language,
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			created_at = NOW()
	`, arg.SourceText, arg.TargetLanguage, arg.Translated, arg.DetectedLanguage, arg.Provider, arg.Model)
	return err
}

// Feedback methods

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	var f db.Feedback
	err := r.db.QueryRow(ctx, `
		INSERT INTO feedback (text, script, transliterated, suggestion)
		VALUES ($1, $2, $3, $4)
		RETURNING id, text, script, transliterated, suggestion, created_at
	`, arg.Text, arg.Script, arg.Transliterated, arg.Suggestion).Scan(
		&f.ID, &f.Text, &f.Script, &f.Transliterated, &f.Suggestion, &f.CreatedAt,
	)
	return f, err
}

func (r *Repository) ListFeedback(ctx context.Context, limit int32) ([]db.Feedback, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, text, script, transliterated, suggestion, created_at
		FROM feedback ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Feedback, error) {
		var f db.Feedback
		err := row.Scan(&f.ID, &f.Text, &f.Script, &f.Transliterated, &f.Suggestion, &f.CreatedAt)
		return f, err
	})
}
