package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// SQLiteHistory records spam check results so batch runs can be audited
// later. It is an adapter of the CLI, not part of the scoring core.
type SQLiteHistory struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteHistory opens (and if needed initializes) the history database
func NewSQLiteHistory(dbPath string, logger *zap.Logger) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS spam_checks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT,
			overall_score REAL,
			risk_level TEXT,
			triggered_rules INTEGER,
			checked_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_checked_at ON spam_checks(checked_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteHistory{db: db, logger: logger}, nil
}

// Record stores one spam check result
func (h *SQLiteHistory) Record(ctx context.Context, subject string, result *core.SpamCheckResult) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO spam_checks (subject, overall_score, risk_level, triggered_rules, checked_at)
		VALUES (?, ?, ?, ?, ?)
	`, subject, result.OverallScore, string(result.RiskLevel), len(result.TriggeredRules), result.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to record spam check: %w", err)
	}
	return nil
}

// Prune removes history entries older than the retention window
func (h *SQLiteHistory) Prune(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	res, err := h.db.ExecContext(ctx, `DELETE FROM spam_checks WHERE checked_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune spam check history: %w", err)
	}
	if removed, err := res.RowsAffected(); err == nil {
		h.logger.Debug("Pruned spam check history", zap.Int64("removed", removed))
	}
	return nil
}

// Close releases the database handle
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
