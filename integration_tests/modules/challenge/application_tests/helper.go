package challengeintegrationtests

import (
	"context"
	"testing"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/integration_tests/testutils"
)

type TestDeps struct {
	Ctx     context.Context
	Repo    challengedb.Repository
	Service challengeservice.Service
	Gen     *testutils.TestDataGenerator
}

func SetupTestChallengeService(t *testing.T) TestDeps {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	if err := testutils.TruncateTables(env.Ctx, env.DB); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	obs := env.Observability()
	repo := challengedb.NewRepository(env.DB)
	return TestDeps{
		Ctx:     env.Ctx,
		Repo:    repo,
		Service: challengeservice.NewChallengeService(repo, obs.Logger, obs.Metrics, obs.Tracer, env.DB, clock.Real{}),
		Gen:     testutils.NewTestDataGenerator(7),
	}
}

func (d TestDeps) create(t *testing.T, in challengeservice.ChallengeInput) challengedomain.Challenge {
	t.Helper()
	res, err := d.Service.CreateChallenge(d.Ctx, in)
	if err != nil || res.Success == nil {
		t.Fatalf("CreateChallenge: err=%v failure=%v", err, res.Failure)
	}
	return *res.Success
}
