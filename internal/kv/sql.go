package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/dbx"
)

// Dialect holds the statements a SQL substrate runs against kv_store.
type Dialect struct {
	name         string
	get          string
	upsert       string
	del          string
	list         string
	deletePrefix string
}

// prefixArgs returns the bind arguments of the list and deletePrefix
// statements.
func (d Dialect) prefixArgs(prefix string) []any {
	if d.name == SQLiteDialect.name {
		return []any{prefix, prefix}
	}
	return []any{prefix}
}

// SQLite compares with substr rather than LIKE: LIKE is case-insensitive for
// ASCII and treats % and _ in user ids as wildcards.
var SQLiteDialect = Dialect{
	name:   "sqlite",
	get:    `SELECT value FROM kv_store WHERE key = ?`,
	upsert: `INSERT INTO kv_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	del:          `DELETE FROM kv_store WHERE key = ?`,
	list:         `SELECT key, value FROM kv_store WHERE substr(key, 1, length(?)) = ?`,
	deletePrefix: `DELETE FROM kv_store WHERE substr(key, 1, length(?)) = ?`,
}

var PostgresDialect = Dialect{
	name:   "postgres",
	get:    `SELECT value FROM kv_store WHERE key = $1`,
	upsert: `INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	del:          `DELETE FROM kv_store WHERE key = $1`,
	list:         `SELECT key, value FROM kv_store WHERE starts_with(key, $1)`,
	deletePrefix: `DELETE FROM kv_store WHERE starts_with(key, $1)`,
}

// SQLSubstrate stores entries in the kv_store table. The schema is expected
// to exist; NewSQLite and NewPostgres migrate it before returning.
type SQLSubstrate struct {
	db *sql.DB  // nil inside a transaction
	q  dbx.DBTX // db, or the open transaction
	d  Dialect
}

var _ Handle = (*SQLSubstrate)(nil)

// NewSQLSubstrate wraps an open database.
func NewSQLSubstrate(db *sql.DB, d Dialect) *SQLSubstrate {
	return &SQLSubstrate{db: db, q: db, d: d}
}

func (s *SQLSubstrate) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.q.QueryRowContext(ctx, s.d.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLSubstrate) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.q.ExecContext(ctx, s.d.upsert, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLSubstrate) Delete(ctx context.Context, key string) error {
	if _, err := s.q.ExecContext(ctx, s.d.del, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLSubstrate) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := s.q.QueryContext(ctx, s.d.list, s.d.prefixArgs(prefix)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv[%s*]: %w", prefix, err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}
	return result, nil
}

func (s *SQLSubstrate) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	res, err := s.q.ExecContext(ctx, s.d.deletePrefix, s.d.prefixArgs(prefix)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete kv[%s*]: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted kv rows: %w", err)
	}
	return int(n), nil
}

// InTx runs fn inside a database transaction. Nested calls reuse the
// transaction already open.
func (s *SQLSubstrate) InTx(ctx context.Context, fn func(ctx context.Context, tx Substrate) error) error {
	if s.db == nil {
		return fn(ctx, s)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &SQLSubstrate{q: tx, d: s.d})
	})
}

// Close closes the underlying database. It is a no-op inside a transaction.
func (s *SQLSubstrate) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
