package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"notepost/pkg/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a Store.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const (
	pingAttempts = 5
	pingBackoff  = 2 * time.Second
)

// DialectFor picks the dialect for a database location. postgres:// and
// postgresql:// URLs select PostgreSQL; everything else is a SQLite path.
func DialectFor(location string) Dialect {
	l := strings.ToLower(location)
	if strings.HasPrefix(l, "postgres://") || strings.HasPrefix(l, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Store owns the connection pool. Request code never touches it directly;
// it borrows connections through a Scope.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an already opened handle.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects to the database at location and verifies it answers.
// Failures are reported as ErrStorageUnavailable.
func Open(ctx context.Context, location string) (*Store, error) {
	dialect := DialectFor(location)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case Postgres:
		db, err = sql.Open("postgres", location)
	default:
		if location != ":memory:" && !strings.HasPrefix(location, "file:") {
			if dir := filepath.Dir(location); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, unavailable("creating database directory", err)
				}
			}
		}
		db, err = sql.Open("sqlite", location)
		if err == nil {
			// One connection: a single writer, and one shared :memory: database.
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, unavailable("opening database", err)
	}

	attempts := 1
	if dialect == Postgres {
		attempts = pingAttempts
	}
	if err := ping(ctx, db, attempts); err != nil {
		db.Close()
		return nil, unavailable("connecting to database", err)
	}

	logger.Sugar.Infow("Successfully connected to the database", "dialect", dialect)
	return &Store{db: db, dialect: dialect}, nil
}

func ping(ctx context.Context, db *sql.DB, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", pingBackoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingBackoff):
		}
	}
	return err
}

// Dialect reports the SQL flavour of the store.
func (s *Store) Dialect() Dialect { return s.dialect }

// NewScope starts a request-scoped accessor. The caller must Close it.
func (s *Store) NewScope() *Scope {
	return &Scope{store: s}
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into the store's dialect.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
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

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
