package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/violetrhodes/violet/pkg/memory"
)

// Repository persists per-user memory records server-side. The server is
// the source of truth; writes are full replaces, last write wins.
type Repository interface {
	GetMemory(ctx context.Context, userID string) (memory.UserMemory, bool, error)
	PutMemory(ctx context.Context, userID string, mem memory.UserMemory) error
	Ping(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository at dbPath.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS memories (
		user_id TEXT PRIMARY KEY,
		memory_json TEXT NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) GetMemory(ctx context.Context, userID string) (memory.UserMemory, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT memory_json FROM memories WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return memory.Default(), false, nil
	}
	if err != nil {
		return memory.Default(), false, fmt.Errorf("get memory: %w", err)
	}

	mem := memory.Default()
	if err := json.Unmarshal([]byte(raw), &mem); err != nil {
		return memory.Default(), false, fmt.Errorf("decode memory: %w", err)
	}
	if mem.UserProfile == nil {
		mem.UserProfile = map[string]any{}
	}
	return mem, true, nil
}

func (s *SQLiteStore) PutMemory(ctx context.Context, userID string, mem memory.UserMemory) error {
	raw, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (user_id, memory_json, updated_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			memory_json = excluded.memory_json,
			updated_at_ms = excluded.updated_at_ms`,
		userID, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
