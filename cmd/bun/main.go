package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/Black-And-White-Club/flag-hunt/db/bundb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "flag hunt database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withDB opens a bun handle for the duration of fn.
func withDB(c *cli.Context, fn func(db *bun.DB) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()
	return fn(db)
}

func findMigrator(db *bun.DB, module string) (bundb.NamedMigrator, error) {
	for _, m := range bundb.Migrators(db) {
		if m.Module == module {
			return m, nil
		}
	}
	return bundb.NamedMigrator{}, fmt.Errorf("invalid module name: %s", module)
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						for _, m := range bundb.Migrators(db) {
							fmt.Printf("Initializing migrations for module: %s\n", m.Module)
							if err := m.Migrator.Init(c.Context); err != nil {
								return fmt.Errorf("init %s: %w", m.Module, err)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						for _, m := range bundb.Migrators(db) {
							group, err := m.Migrator.Migrate(c.Context)
							if err != nil {
								return fmt.Errorf("migrate %s: %w", m.Module, err)
							}
							if group.IsZero() {
								fmt.Printf("No new migrations to run for module: %s\n", m.Module)
							} else {
								fmt.Printf("Migrated module: %s to %s\n", m.Module, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						migrators := bundb.Migrators(db)
						// Reverse order so ledger tables go before the challenges they reference.
						for i := len(migrators) - 1; i >= 0; i-- {
							m := migrators[i]
							group, err := m.Migrator.Rollback(c.Context)
							if err != nil {
								return fmt.Errorf("rollback %s: %w", m.Module, err)
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.Module)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.Module, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						m, err := findMigrator(db, c.Args().First())
						if err != nil {
							return err
						}
						mf, err := m.Migrator.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
						if err != nil {
							return err
						}
						fmt.Printf("Created migration for module %s: %s (%s)\n", m.Module, mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *bun.DB) error {
						for _, m := range bundb.Migrators(db) {
							ms, err := m.Migrator.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.Module)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}

// newRiverCommand installs River's own tables for the release queue.
func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "river queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply river migrations",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					pool, err := pgxpool.New(c.Context, cfg.Postgres.DSN)
					if err != nil {
						return fmt.Errorf("failed to create pgx pool: %w", err)
					}
					defer pool.Close()

					migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
					if err != nil {
						return fmt.Errorf("failed to create river migrator: %w", err)
					}
					res, err := migrator.Migrate(c.Context, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
					if err != nil {
						return fmt.Errorf("river migrate: %w", err)
					}
					for _, v := range res.Versions {
						fmt.Printf("Applied river migration %03d\n", v.Version)
					}
					return nil
				},
			},
		},
	}
}
