package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Store is the sqlite-backed component price table.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// Open opens (or creates) the catalog database at the given path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS components_price (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			component_type TEXT NOT NULL,
			component_name TEXT NOT NULL UNIQUE,
			average_price_dollar INTEGER NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			component_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_components_type ON components_price(component_type)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

// Upsert inserts or replaces an entry, keyed by component name.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO components_price (component_type, component_name, average_price_dollar, category, component_url)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(component_name) DO UPDATE SET
		   component_type = excluded.component_type,
		   average_price_dollar = excluded.average_price_dollar,
		   category = excluded.category,
		   component_url = excluded.component_url`,
		e.Kind, e.Name, e.Price, e.Category, e.SourceURL)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", e.Name, err)
	}
	return nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e Entry
	err := s.db.GetContext(ctx, &e,
		"SELECT id, component_type, component_name, average_price_dollar, category, component_url FROM components_price WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return &e, nil
}

// All returns every catalog entry in insertion order.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT id, component_type, component_name, average_price_dollar, category, component_url FROM components_price ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// WithSource returns the entries that carry a price-refresh URL.
func (s *Store) WithSource(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT id, component_type, component_name, average_price_dollar, category, component_url FROM components_price WHERE component_url != '' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sourced entries: %w", err)
	}
	return entries, nil
}

// UpdatePrice sets a new price for an entry.
func (s *Store) UpdatePrice(ctx context.Context, id int64, price int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE components_price SET average_price_dollar = ? WHERE id = ?", price, id)
	if err != nil {
		return fmt.Errorf("update price for entry %d: %w", id, err)
	}
	return nil
}

// filter runs the token filter against the table. With conjunctive=true every
// token must appear in the name; otherwise at least one must. Zero tokens
// degenerate to WHERE 1=1, i.e. match everything (accepted behavior).
func (s *Store) filter(ctx context.Context, tokens []string, conjunctive bool, kind string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("SELECT id, component_type, component_name, average_price_dollar, category, component_url FROM components_price WHERE 1=1")

	args := make([]any, 0, len(tokens)+1)
	if kind != "" {
		sb.WriteString(" AND component_type = ?")
		args = append(args, kind)
	}

	if len(tokens) > 0 {
		if conjunctive {
			for range tokens {
				sb.WriteString(" AND component_name LIKE ?")
			}
		} else {
			sb.WriteString(" AND (")
			for i := range tokens {
				if i > 0 {
					sb.WriteString(" OR ")
				}
				sb.WriteString("component_name LIKE ?")
			}
			sb.WriteString(")")
		}
		for _, tok := range tokens {
			args = append(args, "%"+tok+"%")
		}
	}

	sb.WriteString(" ORDER BY id")

	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("filter query: %w", err)
	}
	return entries, nil
}

// Count returns the number of catalog rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM components_price"); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
