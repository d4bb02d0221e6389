package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateContact = errors.New("a contact with this name already exists")
	ErrEmailTaken       = errors.New("email already registered")
)

// SQLStore keeps every table of the service. Queries are written with "?"
// placeholders and rebound for postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(driver, dataSourceName string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dataSourceName, "_foreign_keys") && !strings.Contains(dataSourceName, "_fk") {
			sep := "?"
			if strings.Contains(dataSourceName, "?") {
				sep = "&"
			}
			dataSourceName += sep + "_foreign_keys=on"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// One connection keeps in-memory databases alive and serialises writers.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLStore{db: db, driver: driver}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			context TEXT NOT NULL CHECK (context IN ('romantic', 'coparenting', 'workplace', 'family', 'friend')),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL REFERENCES contacts (id) ON DELETE CASCADE,
			contact_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('incoming', 'coach', 'translate')),
			original TEXT NOT NULL,
			result TEXT,
			sentiment TEXT NOT NULL,
			emotional_state TEXT NOT NULL,
			healing_score INTEGER NOT NULL DEFAULT 0,
			model TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_contact ON messages (contact_id, user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS ai_response_cache (
			contact_id TEXT NOT NULL REFERENCES contacts (id) ON DELETE CASCADE,
			message_hash TEXT NOT NULL,
			user_id TEXT NOT NULL,
			context TEXT NOT NULL,
			response TEXT NOT NULL,
			healing_score INTEGER NOT NULL,
			model TEXT NOT NULL,
			sentiment TEXT NOT NULL,
			emotional_state TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			PRIMARY KEY (contact_id, message_hash, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_response_cache_expires ON ai_response_cache (expires_at)`,
		`CREATE TABLE IF NOT EXISTS interpretations (
			id TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL REFERENCES contacts (id) ON DELETE CASCADE,
			contact_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			original_message TEXT NOT NULL,
			interpretation TEXT NOT NULL,
			interpretation_score INTEGER NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			feedback_text TEXT,
			feature_context TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
