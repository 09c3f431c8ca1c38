package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "hunt"
	pgUser     = "hunt"
	pgPassword = "hunt"
)

// SetupPostgresContainer starts a throwaway Postgres and returns it with a
// DSN that bun's pgdriver and pgxpool both accept. The data directory lives
// on tmpfs and the connection ceiling is raised for the submission races.
func SetupPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	pg, err := postgres.Run(ctx, pgImage,
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithCmdArgs("-c", "max_connections=200"),
		testcontainers.WithTmpfs(map[string]string{"/var/lib/postgresql/data": "rw"}),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", sqlURL).WithStartupTimeout(45*time.Second),
		),
	)
	if err != nil {
		if pg != nil {
			_ = pg.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, "", fmt.Errorf("postgres connection string: %w", err)
	}

	log.Printf("Postgres container ready (%s)", pgImage)
	return pg, dsn, nil
}

func sqlURL(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, host, port.Port(), pgDatabase)
}
