package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is what repositories return for a cache miss or a missing
// transliteration record, whichever driver backs them.
var ErrNoRows = errors.New("db: record not found")

// driverNoRows are the drivers' own sentinels, matched so callers holding an
// unwrapped driver error get the same answer.
var driverNoRows = []error{sql.ErrNoRows, pgx.ErrNoRows}

// IsNoRows reports whether err, or anything it wraps, means "not found".
func IsNoRows(err error) bool {
	if errors.Is(err, ErrNoRows) {
		return true
	}
	for _, target := range driverNoRows {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
