package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
)

// SQLiteStore persists conversation records in a local SQLite database.
type SQLiteStore struct {
	conn    *sql.DB
	path    string
	metrics *metrics.Metrics
}

// SetMetrics enables per-operation metrics recording.
func (s *SQLiteStore) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *SQLiteStore) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStoreOp(op, status)
}

// NewSQLite opens (or creates) the database at dbPath and initializes the
// schema. WAL mode and a busy timeout keep concurrent webhook goroutines from
// tripping over each other.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.DatabaseBusyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

func initSchema(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		national_id TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		flow TEXT NOT NULL DEFAULT '',
		step INTEGER NOT NULL DEFAULT 0,
		err_count INTEGER NOT NULL DEFAULT 0,
		registered INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
	`
	if _, err := conn.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create conversations table: %w", err)
	}
	return nil
}

// Get returns the record for userID, or (nil, nil) when absent.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*Conversation, error) {
	query := `
		SELECT user_id, name, national_id, phone, flow, step, err_count, registered, updated_at
		FROM conversations WHERE user_id = ?
	`
	var (
		conv       Conversation
		flow       string
		registered int
		updatedAt  int64
	)
	err := s.conn.QueryRowContext(ctx, query, userID).Scan(
		&conv.UserID, &conv.Name, &conv.NationalID, &conv.Phone,
		&flow, &conv.Step, &conv.ErrCount, &registered, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		s.record("get", nil)
		return nil, nil
	}
	s.record("get", err)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load conversation", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv.Flow = Flow(flow)
	conv.Registered = registered != 0
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}

// Insert creates a new record. Fails if the user already has one.
func (s *SQLiteStore) Insert(ctx context.Context, conv *Conversation) error {
	query := `
		INSERT INTO conversations (user_id, name, national_id, phone, flow, step, err_count, registered, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.exec(ctx, "Insert", conv, query)
}

// Update replaces the record for conv.UserID, creating it when missing.
func (s *SQLiteStore) Update(ctx context.Context, conv *Conversation) error {
	query := `
		INSERT INTO conversations (user_id, name, national_id, phone, flow, step, err_count, registered, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			national_id = excluded.national_id,
			phone = excluded.phone,
			flow = excluded.flow,
			step = excluded.step,
			err_count = excluded.err_count,
			registered = excluded.registered,
			updated_at = excluded.updated_at
	`
	return s.exec(ctx, "Update", conv, query)
}

func (s *SQLiteStore) exec(ctx context.Context, op string, conv *Conversation, query string) error {
	registered := 0
	if conv.Registered {
		registered = 1
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx, query,
		conv.UserID, conv.Name, conv.NationalID, conv.Phone,
		string(conv.Flow), conv.Step, conv.ErrCount, registered, time.Now().Unix(),
	)
	s.record(strings.ToLower(op), err)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save conversation",
			"operation", op,
			"user_id", conv.UserID,
			"error", err)
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", op,
			"duration_ms", duration.Milliseconds(),
			"user_id", conv.UserID)
	}
	return nil
}

// Delete removes the record for userID. Deleting a missing record is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = ?`, userID)
	s.record("delete", err)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete conversation", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}
