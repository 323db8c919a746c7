package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	defaultPath = "data/conversations/conversations.db"

	// Matches the 10s lock-acquisition timeout the schema was designed around.
	busyTimeoutMS = 10000
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
	log  *zap.Logger
}

// Open creates (if needed) the parent directories and opens the SQLite
// database. It does not create the schema; call CreateSchema for that.
func Open(path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db, log: log}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	title TEXT,
	model_name TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id INTEGER NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('user', 'assistant', 'system')),
	content TEXT NOT NULL,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	token_count INTEGER,
	FOREIGN KEY (conversation_id)
		REFERENCES conversations(id)
		ON DELETE CASCADE
);`,
	`CREATE TABLE IF NOT EXISTS model_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	model_name TEXT NOT NULL,
	tokens_used INTEGER NOT NULL,
	response_time REAL,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_model_usage_timestamp ON model_usage(timestamp DESC);`,
	`CREATE TRIGGER IF NOT EXISTS update_conversation_timestamp
	AFTER INSERT ON messages
	BEGIN
		UPDATE conversations
		SET updated_at = CURRENT_TIMESTAMP
		WHERE id = NEW.conversation_id;
	END;`,
}

// CreateSchema ensures the conversations, messages and model_usage tables
// exist along with their indexes and the updated_at trigger. Safe to run on
// every startup.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// WithTx runs fn inside a transaction: commit on success, rollback and
// propagate on error. The transaction is always released.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		s.log.Error("database transaction failed", zap.Error(err))
		return err
	}
	return tx.Commit()
}

// Query runs an arbitrary query and returns each row as a column→value map.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ExecMany runs the same statement once per argument set, inside a single
// transaction with a prepared statement.
func (s *Store) ExecMany(ctx context.Context, query string, argSets [][]any) error {
	if len(argSets) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, args := range argSets {
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return err
			}
		}
		return nil
	})
}

// Column describes one column as reported by PRAGMA table_info.
type Column struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PK      int
}

// TableInfo returns column metadata for a table.
func (s *Store) TableInfo(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make([]Column, 0)
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &c.NotNull, &c.Default, &c.PK); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Vacuum compacts and defragments the database file.
func (s *Store) Vacuum(ctx context.Context) error {
	s.log.Info("running VACUUM on database", zap.String("path", s.path))
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// CheckIntegrity runs PRAGMA integrity_check and returns the raw result,
// which is "ok" for a healthy database.
func (s *Store) CheckIntegrity(ctx context.Context) (string, error) {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return "", err
	}
	return result, nil
}

// Stats summarizes the database contents.
type Stats struct {
	Conversations int64
	Messages      int64
	TotalTokens   int64
	SizeBytes     int64
}

// SizeMB reports the database size in megabytes.
func (st Stats) SizeMB() float64 {
	return float64(st.SizeBytes) / (1024 * 1024)
}

// Statistics computes row counts, token totals and the on-disk size.
func (s *Store) Statistics(ctx context.Context) (Stats, error) {
	var st Stats
	queries := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM conversations", &st.Conversations},
		{"SELECT COUNT(*) FROM messages", &st.Messages},
		{"SELECT COALESCE(SUM(token_count), 0) FROM messages", &st.TotalTokens},
		{"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()", &st.SizeBytes},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}

// SQLite stores CURRENT_TIMESTAMP as UTC "YYYY-MM-DD HH:MM:SS" text.
const timestampLayout = "2006-01-02 15:04:05"

func parseTimestamp(raw string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, raw, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}
