package ledgerintegrationtests

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/integration_tests/testutils"
)

// recordingNotifier collects first-solve events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []ledgerdomain.FirstSolve
}

func (n *recordingNotifier) FirstSolve(_ context.Context, ev ledgerdomain.FirstSolve) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) Events() []ledgerdomain.FirstSolve {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ledgerdomain.FirstSolve(nil), n.events...)
}

type TestDeps struct {
	Ctx           context.Context
	BunDB         *bun.DB
	LedgerRepo    ledgerdb.Repository
	ChallengeRepo challengedb.Repository
	Ledger        ledgerservice.Service
	Challenges    challengeservice.Service
	Notifier      *recordingNotifier
	Gen           *testutils.TestDataGenerator
	Admin         uuid.UUID
}

func SetupTestLedgerService(t *testing.T) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	if err := testutils.TruncateTables(env.Ctx, env.DB); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	obs := env.Observability()
	challengeRepo := challengedb.NewRepository(env.DB)
	ledgerRepo := ledgerdb.NewRepository(env.DB)
	notifier := &recordingNotifier{}

	challenges := challengeservice.NewChallengeService(challengeRepo, obs.Logger, obs.Metrics, obs.Tracer, env.DB, clock.Real{})
	ledger := ledgerservice.NewLedgerService(
		ledgerRepo,
		challengeRepo,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		env.DB,
		clock.Real{},
		env.Config.Hunt,
		notifier,
		ledgerservice.Config{NotifyTimeout: env.Config.Notifications.PublishTimeout},
	)

	return TestDeps{
		Ctx:           env.Ctx,
		BunDB:         env.DB,
		LedgerRepo:    ledgerRepo,
		ChallengeRepo: challengeRepo,
		Ledger:        ledger,
		Challenges:    challenges,
		Notifier:      notifier,
		Gen:           testutils.NewTestDataGenerator(42),
		Admin:         uuid.New(),
	}
}

// Cohorts registers one cohort per name with n participants each.
func (d TestDeps) Cohorts(t *testing.T, n int, names ...string) map[uuid.UUID][]ledgerdomain.Participant {
	t.Helper()
	out := make(map[uuid.UUID][]ledgerdomain.Participant, len(names))
	for i, name := range names {
		res, err := d.Ledger.RegisterCohort(d.Ctx, name, i, d.Admin)
		if err != nil || res.Success == nil {
			t.Fatalf("RegisterCohort(%q): err=%v failure=%v", name, err, res.Failure)
		}
		cohortID := res.Success.ID
		for _, p := range d.Gen.Participants(cohortID, n) {
			pres, err := d.Ledger.RegisterParticipant(d.Ctx, p)
			if err != nil || pres.Success == nil {
				t.Fatalf("RegisterParticipant: err=%v failure=%v", err, pres.Failure)
			}
			out[cohortID] = append(out[cohortID], *pres.Success)
		}
	}
	return out
}

// Challenge creates a released challenge and returns it with its flag.
func (d TestDeps) Challenge(t *testing.T, typ challengedomain.Type, points int) challengedomain.Challenge {
	t.Helper()
	in := d.Gen.Challenge(typ, points)
	res, err := d.Challenges.CreateChallenge(d.Ctx, in)
	if err != nil || res.Success == nil {
		t.Fatalf("CreateChallenge: err=%v failure=%v", err, res.Failure)
	}
	c := *res.Success
	c.Flag = in.Flag
	return c
}

// submitAll fires one correct submission per participant at the same time.
func (d TestDeps) submitAll(t *testing.T, participants []ledgerdomain.Participant, c challengedomain.Challenge) []ledgerdomain.SubmitResult {
	t.Helper()
	out := make([]ledgerdomain.SubmitResult, len(participants))
	errs := make([]error, len(participants))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, p := range participants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := d.Ledger.Submit(d.Ctx, p.ID, c.ID, c.Flag)
			if err != nil {
				errs[i] = err
				return
			}
			if res.Success == nil {
				errs[i] = *res.Failure
				return
			}
			out[i] = *res.Success
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("submission %d failed: %v", i, err)
		}
	}
	return out
}
