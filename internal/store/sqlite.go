package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Journal using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Web sessions write concurrently
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		tool TEXT NOT NULL,
		arguments TEXT NOT NULL,
		result TEXT,
		error TEXT,
		duration_ns INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_created ON tool_calls(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordToolCall appends a call and sets its ID. A zero CreatedAt is set to now.
func (s *SQLiteStore) RecordToolCall(ctx context.Context, call *ToolCall) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	call.CreatedAt = call.CreatedAt.UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (session_id, tool, arguments, result, error, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, call.SessionID, call.Tool, call.Arguments, call.Result, call.Error, call.Duration.Nanoseconds(), call.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record tool call: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tool call id: %w", err)
	}
	call.ID = id
	return nil
}

// ListToolCalls returns journaled calls, newest first.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, filter ToolCallFilter) ([]ToolCall, error) {
	query := "SELECT id, session_id, tool, arguments, result, error, duration_ns, created_at FROM tool_calls WHERE 1=1"
	args := []interface{}{}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Tool != "" {
		query += " AND tool = ?"
		args = append(args, filter.Tool)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool calls: %w", err)
	}
	defer rows.Close()

	var calls []ToolCall
	for rows.Next() {
		var c ToolCall
		var result, errText sql.NullString
		var durationNs int64
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Tool, &c.Arguments, &result, &errText, &durationNs, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tool call: %w", err)
		}
		c.Result = result.String
		c.Error = errText.String
		c.Duration = time.Duration(durationNs)
		calls = append(calls, c)
	}

	return calls, rows.Err()
}

var _ Journal = (*SQLiteStore)(nil)
