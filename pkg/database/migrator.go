package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of migrations.
func (m *Manager) Migrate(ctx context.Context, migrations fs.FS, log *slog.Logger) error {
	p, err := m.Connection(ctx)
	if err != nil {
		return err
	}
	pool, ok := p.(*pgxpool.Pool)
	if !ok {
		return errors.Mark(errors.New("migrations need a pgx connection pool"), ErrApplyMigrations)
	}
	if log == nil {
		log = m.logger
	}
	return Migrate(ctx, pool, migrations, m.conn.cfg.MigrationsTable, log)
}

// Migrate runs goose against a pgx pool through the database/sql bridge.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	// The bridge shares the pool's connections, so it is not closed here.
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(migrationTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Mark(errors.Wrap(err, "set dialect"), ErrSetDialect)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Mark(errors.Wrap(err, "apply migrations"), ErrApplyMigrations)
	}

	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns the error as well; never exit from here.
	g.log.Error(fmt.Sprintf(format, args...))
}
