// Package identity produces the stable per-installation user id every
// other component is keyed on.
package identity

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// UserIDKey is the single durable entry this store owns.
const UserIDKey = "violet_user_id"

// Store is a tiny SQLite-backed key/value store. When the database cannot
// be opened the store degrades to an ephemeral id regenerated every
// session; memory keyed on it simply starts empty.
type Store struct {
	db *sql.DB
}

// Open creates/opens the identity database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create identity db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init identity schema: %w", err)
		}
	}
	return nil
}

// UserID returns the persisted user id, generating and storing one on the
// first call. There is no error path: storage failure silently degrades
// to a fresh id for this session only.
func (s *Store) UserID() string {
	if s == nil || s.db == nil {
		return NewUserID()
	}

	var id string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, UserIDKey).Scan(&id)
	if err == nil && id != "" {
		return id
	}
	if err != nil && err != sql.ErrNoRows {
		slog.Debug("identity read failed, using ephemeral id", "error", err)
		return NewUserID()
	}

	id = NewUserID()
	_, err = s.db.Exec(`INSERT INTO kv (key, value, created_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING`, UserIDKey, id, time.Now().UnixMilli())
	if err != nil {
		slog.Debug("identity write failed, using ephemeral id", "error", err)
		return id
	}

	// Re-read in case a concurrent first call won the insert.
	var stored string
	if err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, UserIDKey).Scan(&stored); err == nil && stored != "" {
		return stored
	}
	return id
}

// NewUserID generates a fresh identifier: a random UUID when the secure
// random source works, else a low-entropy timestamp+random composite.
func NewUserID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("u_%d_%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}
