package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a users table: current build id plus the
// JSON-serialized build list, timestamps as RFC 3339 text.
type SQLiteStore struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// OpenSQLite opens (or creates) the sessions database at the given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		current_build INTEGER NOT NULL DEFAULT 0,
		builds_json TEXT NOT NULL DEFAULT '[]',
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	)`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

type userRow struct {
	UserID       int64  `db:"user_id"`
	CurrentBuild int    `db:"current_build"`
	BuildsJSON   string `db:"builds_json"`
}

// Get loads a user's session. Returns ErrNotFound for unknown users.
func (s *SQLiteStore) Get(ctx context.Context, userID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT user_id, current_build, builds_json FROM users WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	var builds []*Build
	if row.BuildsJSON != "" {
		if err := json.Unmarshal([]byte(row.BuildsJSON), &builds); err != nil {
			return nil, fmt.Errorf("decode builds for user %d: %w", userID, err)
		}
	}

	return &Session{
		UserID:       row.UserID,
		CurrentBuild: row.CurrentBuild,
		Builds:       builds,
	}, nil
}

// Put writes a session, replacing any previous row for the user.
func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buildsJSON, err := json.Marshal(sess.Builds)
	if err != nil {
		return fmt.Errorf("encode builds for user %d: %w", sess.UserID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (user_id, current_build, builds_json, updated_at)
		 VALUES (?, ?, ?, strftime('%s','now'))`,
		sess.UserID, sess.CurrentBuild, string(buildsJSON))
	if err != nil {
		return fmt.Errorf("save user %d: %w", sess.UserID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
