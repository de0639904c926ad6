package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS suggestions (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		top_intent_id TEXT,
		top_confidence_pct INTEGER,
		verdict TEXT NOT NULL,
		source TEXT NOT NULL,
		remote_status TEXT NOT NULL,
		query_time_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_suggestions_created_at ON suggestions(created_at);
	CREATE INDEX IF NOT EXISTS idx_suggestions_top_intent ON suggestions(top_intent_id);
	`
	_, err := db.Exec(schema)
	return err
}

// LogSuggestion inserts one suggestion record.
func (s *SQLiteStorage) LogSuggestion(ctx context.Context, record *models.SuggestionRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions
		 (id, question, top_intent_id, top_confidence_pct, verdict, source, remote_status, query_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Question, record.TopIntentID, record.TopConfidencePct,
		string(record.Verdict), record.Source, string(record.RemoteStatus),
		record.QueryTime, record.CreatedAt,
	)
	return err
}

// RecentSuggestions returns the newest records, newest first.
func (s *SQLiteStorage) RecentSuggestions(ctx context.Context, limit int) ([]*models.SuggestionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, top_intent_id, top_confidence_pct, verdict, source, remote_status, query_time_ms, created_at
		 FROM suggestions ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.SuggestionRecord
	for rows.Next() {
		var record models.SuggestionRecord
		var verdict, remoteStatus string
		if err := rows.Scan(&record.ID, &record.Question, &record.TopIntentID,
			&record.TopConfidencePct, &verdict, &record.Source, &remoteStatus,
			&record.QueryTime, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.Verdict = models.Verdict(verdict)
		record.RemoteStatus = models.RemoteStatus(remoteStatus)
		records = append(records, &record)
	}
	return records, rows.Err()
}

// CountSuggestions returns the total number of logged suggestions.
func (s *SQLiteStorage) CountSuggestions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suggestions`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
