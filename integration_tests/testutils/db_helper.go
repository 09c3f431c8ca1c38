package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/flag-hunt/db/bundb"
)

// ledgerTables lists every application table, children first.
var ledgerTables = []string{
	"audit_entries",
	"completions",
	"submissions",
	"participants",
	"cohorts",
	"challenge_prerequisites",
	"challenges",
}

func runMigrations(ctx context.Context, db *bun.DB, pgConnStr string) error {
	if err := runRiverMigrations(ctx, pgConnStr); err != nil {
		return err
	}
	return bundb.MigrateAll(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func runRiverMigrations(ctx context.Context, pgConnStr string) error {
	pool, err := pgxpool.New(ctx, pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// TruncateTables empties the named tables, or every application table when
// none are named.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		tables = ledgerTables
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// CountRows returns the row count of table matching where.
func CountRows(ctx context.Context, db *bun.DB, table, where string, args ...any) (int, error) {
	q := db.NewSelect().Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	return q.Count(ctx)
}
