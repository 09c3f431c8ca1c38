package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	challengemigrations "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories/migrations"
	ledgermigrations "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// DBService owns the shared bun connection pool.
type DBService struct {
	db *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService opens and pings the Postgres pool described by cfg.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to PostgreSQL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*challengedb.Prerequisite)(nil))

	logger.InfoContext(ctx, "Database connection established")
	return &DBService{db: db}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	))
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(10)
	sqldb.SetConnMaxLifetime(30 * time.Minute)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}

// NamedMigrator pairs a module name with its migrator.
type NamedMigrator struct {
	Module   string
	Migrator *migrate.Migrator
}

// Migrators lists every module's migrator in dependency order: ledger
// tables reference challenges.
func Migrators(db *bun.DB) []NamedMigrator {
	return []NamedMigrator{
		{Module: "challenge", Migrator: migrate.NewMigrator(db, challengemigrations.Migrations, migrate.WithTableName("bun_migrations_challenge"), migrate.WithLocksTableName("bun_migration_locks_challenge"))},
		{Module: "ledger", Migrator: migrate.NewMigrator(db, ledgermigrations.Migrations, migrate.WithTableName("bun_migrations_ledger"), migrate.WithLocksTableName("bun_migration_locks_ledger"))},
	}
}

// MigrateAll initializes and runs every module's pending migrations.
func MigrateAll(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for _, m := range Migrators(db) {
		if err := m.Migrator.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", m.Module, err)
		}
		group, err := m.Migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("run %s migrations: %w", m.Module, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", m.Module))
			continue
		}
		logger.InfoContext(ctx, "Migrated module", slog.String("module", m.Module), slog.String("group", group.String()))
	}
	return nil
}
