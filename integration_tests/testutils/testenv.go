package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/Black-And-White-Club/flag-hunt/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by a test binary.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	PgConnStr   string
	DB          *bun.DB
	Config      *config.Config

	natsOnce      sync.Once
	natsContainer *nats.NATSContainer
	natsURL       string
	natsErr       error
}

var (
	globalEnv     *TestEnvironment
	globalEnvErr  error
	globalEnvOnce sync.Once
)

// GetOrCreateTestEnv starts Postgres once per test binary and runs every
// migration. Integration tests are skipped under -short.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	globalEnvOnce.Do(func() {
		globalEnv, globalEnvErr = newTestEnvironment(context.Background())
	})
	if globalEnvErr != nil {
		t.Fatalf("failed to create test environment: %v", globalEnvErr)
	}
	return globalEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	if err := runMigrations(ctx, db, pgConnStr); err != nil {
		db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Ctx:         ctx,
		PgContainer: pgContainer,
		PgConnStr:   pgConnStr,
		DB:          db,
		Config: &config.Config{
			Postgres: config.PostgresConfig{DSN: pgConnStr},
			Hunt:     config.HuntConfig{Active: true},
		},
	}, nil
}

// NATSURL starts a NATS container the first time a test asks for one.
func (env *TestEnvironment) NATSURL(t *testing.T) string {
	t.Helper()
	env.natsOnce.Do(func() {
		env.natsContainer, env.natsURL, env.natsErr = containers.SetupNatsContainer(env.Ctx)
	})
	if env.natsErr != nil {
		t.Fatalf("failed to setup nats container: %v", env.natsErr)
	}
	return env.natsURL
}

// Observability returns a silent stack for services under test.
func (env *TestEnvironment) Observability() observability.Observability {
	return observability.NewNoop()
}

// Shutdown terminates every container. Call it from TestMain.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	if globalEnv.DB != nil {
		globalEnv.DB.Close()
	}
	if globalEnv.natsContainer != nil {
		if err := globalEnv.natsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
	if globalEnv.PgContainer != nil {
		if err := globalEnv.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Postgres container: %v", err)
		}
	}
}
