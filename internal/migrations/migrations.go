// Package migrations embeds the kv_store schema for every SQL substrate and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Dialect names a migration directory.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var gooseDialects = map[Dialect]goose.Dialect{
	SQLite:   goose.DialectSQLite3,
	Postgres: goose.DialectPostgres,
}

// goose keeps its base FS, dialect and logger in package globals.
var mu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration of dialect to db.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, logger logging.Logger) error {
	gd, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("unknown migration dialect %q", dialect)
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(Migrations)
	goose.SetLogger(&gooseLogger{ctx: ctx, l: logger})
	if err := goose.SetDialect(string(gd)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, string(dialect)); err != nil {
		return fmt.Errorf("failed to apply %s migrations: %w", dialect, err)
	}
	return nil
}

// gooseLogger routes goose progress messages into the application log.
type gooseLogger struct {
	ctx context.Context
	l   logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.l.Info(g.ctx, "migration", "msg", fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(g.ctx, "migration failed", "msg", fmt.Sprintf(format, v...))
}
