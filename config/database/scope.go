package database

import (
	"context"
	"database/sql"
	"sync"
)

// Scope hands out one connection for the lifetime of a request.
//
// The connection is borrowed lazily on the first call to Conn; every later
// call returns the same *sql.Conn until Close gives it back to the pool.
// Close on a scope that never borrowed is a no-op.
type Scope struct {
	store *Store

	mu     sync.Mutex
	conn   *sql.Conn
	closed bool
}

// Conn returns the scope's connection, borrowing it on first use.
func (s *Scope) Conn(ctx context.Context) (*sql.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrScopeClosed
	}
	if s.conn != nil {
		return s.conn, nil
	}
	c, err := s.store.db.Conn(ctx)
	if err != nil {
		return nil, unavailable("borrowing connection", err)
	}
	s.conn = c
	return c, nil
}

// Opened reports whether a connection is currently held.
func (s *Scope) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Close returns the connection to the pool and retires the scope.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Query runs a read statement written with ? placeholders.
func (s *Scope) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c, err := s.Conn(ctx)
	if err != nil {
		return nil, storageErr("query", err)
	}
	rows, err := c.QueryContext(ctx, s.store.rebind(query), args...)
	if err != nil {
		return nil, storageErr("query", err)
	}
	return rows, nil
}

// Exec runs a statement outside of an explicit transaction.
func (s *Scope) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c, err := s.Conn(ctx)
	if err != nil {
		return nil, storageErr("exec", err)
	}
	res, err := c.ExecContext(ctx, s.store.rebind(query), args...)
	if err != nil {
		return nil, storageErr("exec", err)
	}
	return res, nil
}

// Ping checks the scope's connection.
func (s *Scope) Ping(ctx context.Context) error {
	c, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	return storageErr("ping", c.PingContext(ctx))
}

// Tx is a transaction on the scope's connection.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// Exec runs a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, t.store.rebind(query), args...)
	if err != nil {
		return nil, storageErr("exec", err)
	}
	return res, nil
}

// Row is a single-row result whose Scan reports StorageErrors.
type Row struct {
	row *sql.Row
}

func (r *Row) Scan(dest ...any) error {
	return storageErr("query", r.row.Scan(dest...))
}

// QueryRow runs a statement returning at most one row, such as an INSERT
// with RETURNING.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	return &Row{row: t.tx.QueryRowContext(ctx, t.store.rebind(query), args...)}
}

// InTx runs fn in a transaction. A nil return commits; an error rolls back
// before InTx returns, so no partial write survives.
func (s *Scope) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	c, err := s.Conn(ctx)
	if err != nil {
		return storageErr("begin", err)
	}
	sqlTx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}

	if err := fn(&Tx{tx: sqlTx, store: s.store}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return storageErr("rollback", rbErr)
		}
		return err
	}
	return storageErr("commit", sqlTx.Commit())
}

type scopeKey struct{}

// WithScope attaches the scope to ctx.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope attached to ctx.
func FromContext(ctx context.Context) (*Scope, error) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	if !ok || s == nil {
		return nil, ErrNoScope
	}
	return s, nil
}
