package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Storage drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// NewSQLite opens the SQLite database at dsn and migrates it.
func NewSQLite(ctx context.Context, dsn string, logger logging.Logger) (*SQLSubstrate, error) {
	db, err := sqlOpen("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", dsn, err)
	}
	// one writer at a time; also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, migrations.SQLite, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLSubstrate(db, SQLiteDialect), nil
}

// NewPostgres connects to PostgreSQL through pgx and migrates the schema.
func NewPostgres(ctx context.Context, dsn string, logger logging.Logger) (*SQLSubstrate, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := migrations.Up(ctx, db, migrations.Postgres, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLSubstrate(db, PostgresDialect), nil
}

// Open returns the substrate selected by driver.
func Open(ctx context.Context, driver, dsn string, logger logging.Logger) (Handle, error) {
	logger.Info(ctx, "opening storage", "driver", driver)

	var (
		s   *SQLSubstrate
		err error
	)
	switch driver {
	case DriverMemory:
		return NewMemorySubstrate(), nil
	case DriverSQLite, "":
		s, err = NewSQLite(ctx, dsn, logger)
	case DriverPostgres:
		s, err = NewPostgres(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
