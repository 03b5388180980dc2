package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/romanize/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	conn *sql.DB
	db   dbtx
}

// New opens (or creates) a SQLite database and applies the schema.
func New(ctx context.Context, dbPath string) (*Repository, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	isNew := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNew = true
	}

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	// SQLite allows a single writer, and each :memory: connection is its own database.
	sqliteDB.SetMaxOpenConns(1)

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew {
		slog.Info("created new SQLite database", "path", dbPath)
	}

	return &Repository{conn: sqliteDB, db: sqliteDB}, nil
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	err = fn(&Repository{conn: r.conn, db: tx})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// History methods

func (r *Repository) RecordTransliteration(ctx context.Context, arg db.RecordTransliterationParams) (db.Transliteration, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO transliterations (original, transliterated, script, status, source)
		VALUES (?, ?, ?, ?, ?)
	`, arg.Original, arg.Transliterated, arg.Script, arg.Status, arg.Source)
	if err != nil {
		return db.Transliteration{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Transliteration{}, err
	}

	return scanTransliteration(r.db.QueryRowContext(ctx, `
		SELECT id, original, transliterated, script, status, source, created_at
		FROM transliterations WHERE id = ?
	`, id))
}

func (r *Repository) ListRecentTransliterations(ctx context.Context, limit int32) ([]db.Transliteration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, original, transliterated, script, status, source, created_at
		FROM transliterations ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.Transliteration
	for rows.Next() {
		var t db.Transliteration
		var createdAtStr string
		if err := rows.Scan(&t.ID, &t.Original, &t.Transliterated, &t.Script, &t.Status, &t.Source, &createdAtStr); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Translation cache methods

func (r *Repository) GetCachedTranslation(ctx context.Context, arg db.GetCachedTranslationParams) (db.CachedTranslation, error) {
	var c db.CachedTranslation
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source_text, target_language, translated, detected_language, provider, model, created_at
		FROM translation_cache
		WHERE source_text = ? AND target_language = ?
	`, arg.SourceText, arg.TargetLanguage).Scan(
		&c.ID, &c.SourceText, &c.TargetLanguage, &c.Translated, &c.DetectedLanguage, &c.Provider, &c.Model, &createdAtStr,
	)
	if err == sql.ErrNoRows {
		return db.CachedTranslation{}, db.ErrNoRows
	}
	if err != nil {
		return db.CachedTranslation{}, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return c, nil
}

func (r *Repository) CacheTranslation(ctx context.Context, arg db.CacheTranslationParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO translation_cache (source_text, target_language, translated, detected_language, provider, model)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_text, target_language)
		DO UPDATE SET translated = excluded.translated,
			detected_language = excluded.detected_language,
			provider = excluded.provider,
			model = excluded.model,
			created_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`, arg.SourceText, arg.TargetLanguage, arg.Translated, arg.DetectedLanguage, arg.Provider, arg.Model)
	return err
}

// Feedback methods

func (r *Repository) CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (text, script, transliterated, suggestion)
		VALUES (?, ?, ?, ?)
	`, arg.Text, arg.Script, arg.Transliterated, arg.Suggestion)
	if err != nil {
		return db.Feedback{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Feedback{}, err
	}

	var f db.Feedback
	var createdAtStr string
	err = r.db.QueryRowContext(ctx, `
		SELECT id, text, script, transliterated, suggestion, created_at FROM feedback WHERE id = ?
	`, id).Scan(&f.ID, &f.Text, &f.Script, &f.Transliterated, &f.Suggestion, &createdAtStr)
	if err != nil {
		return db.Feedback{}, err
	}
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return f, nil
}

func (r *Repository) ListFeedback(ctx context.Context, limit int32) ([]db.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, script, transliterated, suggestion, created_at
		FROM feedback ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.Feedback
	for rows.Next() {
		var f db.Feedback
		var createdAtStr string
		if err := rows.Scan(&f.ID, &f.Text, &f.Script, &f.Transliterated, &f.Suggestion, &createdAtStr); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Helper functions

func scanTransliteration(row *sql.Row) (db.Transliteration, error) {
	var t db.Transliteration
	var createdAtStr string
	err := row.Scan(&t.ID, &t.Original, &t.Transliterated, &t.Script, &t.Status, &t.Source, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.Transliteration{}, db.ErrNoRows
	}
	if err != nil {
		return db.Transliteration{}, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return t, nil
}
