package ledgerintegrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	ledgerservice "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/integration_tests/testutils"
)

func TestInvalidateSubmission_ReopensExclusive(t *testing.T) {
	deps := SetupTestLedgerService(t)
	cohorts := deps.Cohorts(t, 1, deps.Gen.CohortNames(2)...)
	challenge := deps.Challenge(t, challengedomain.TypeExclusive, 300)

	var solvers []ledgerdomain.Participant
	for _, ps := range cohorts {
		solvers = append(solvers, ps[0])
	}
	winner, loser := solvers[0], solvers[1]

	won, err := deps.Ledger.Submit(deps.Ctx, winner.ID, challenge.ID, challenge.Flag)
	require.NoError(t, err)
	require.True(t, won.Success.Accepted)

	blocked, err := deps.Ledger.Submit(deps.Ctx, loser.ID, challenge.ID, challenge.Flag)
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.ReasonLocked, blocked.Success.Reason)

	res, err := deps.Ledger.InvalidateSubmission(deps.Ctx, won.Success.SubmissionID, deps.Admin)
	require.NoError(t, err)
	require.NotNil(t, res.Success, "failure: %v", res.Failure)
	assert.True(t, res.Success.Reopened)
	assert.Equal(t, 300, res.Success.PointsRemoved)

	row, err := deps.ChallengeRepo.GetChallenge(deps.Ctx, nil, challenge.ID)
	require.NoError(t, err)
	assert.False(t, row.Locked)

	// The reversal is durable: submission flagged, audit written, award gone.
	var sub ledgerdb.Submission
	require.NoError(t, deps.BunDB.NewSelect().Model(&sub).Where("id = ?", won.Success.SubmissionID).Scan(deps.Ctx))
	assert.True(t, sub.Invalidated)
	assert.Equal(t, deps.Admin, sub.InvalidatedBy)

	entries, err := deps.LedgerRepo.ListAuditEntries(deps.Ctx, nil)
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if e.Action == ledgerdb.ActionInvalidateSubmission {
			found = true
			assert.Equal(t, deps.Admin, e.ActorID)
			assert.EqualValues(t, 300, e.Snapshot["points_earned"])
			assert.Equal(t, true, e.Snapshot["reopened"])
		}
	}
	assert.True(t, found, "audit entry missing")

	// The other cohort may now take it.
	retry, err := deps.Ledger.Submit(deps.Ctx, loser.ID, challenge.ID, challenge.Flag)
	require.NoError(t, err)
	assert.True(t, retry.Success.Accepted)

	again, err := deps.Ledger.InvalidateSubmission(deps.Ctx, won.Success.SubmissionID, deps.Admin)
	require.NoError(t, err)
	require.NotNil(t, again.Failure)
	assert.ErrorIs(t, *again.Failure, ledgerservice.ErrAlreadyInvalidated)
}

func TestInvalidateCompletion_PromotesNextSolver(t *testing.T) {
	deps := SetupTestLedgerService(t)
	cohorts := deps.Cohorts(t, 3, deps.Gen.CohortNames(1)...)
	challenge := deps.Challenge(t, challengedomain.TypeNormal, 20)

	var members []ledgerdomain.Participant
	for _, ps := range cohorts {
		members = ps
	}
	for _, p := range members {
		res, err := deps.Ledger.Submit(deps.Ctx, p.ID, challenge.ID, challenge.Flag)
		require.NoError(t, err)
		require.True(t, res.Success.Accepted)
	}

	first, err := deps.LedgerRepo.GetCompletion(deps.Ctx, nil, members[0].ID, challenge.ID)
	require.NoError(t, err)
	require.True(t, first.FirstForCohort)

	res, err := deps.Ledger.InvalidateCompletion(deps.Ctx, first.ID, deps.Admin)
	require.NoError(t, err)
	require.NotNil(t, res.Success)

	next, err := deps.LedgerRepo.GetCompletion(deps.Ctx, nil, members[1].ID, challenge.ID)
	require.NoError(t, err)
	assert.True(t, next.FirstForCohort)
	assert.Equal(t, next.ID, res.Success.Promoted)
	assert.Zero(t, next.PointsEarned)

	remaining, err := testutils.CountRows(deps.Ctx, deps.BunDB, "completions", "challenge_id = ? AND first_for_cohort", challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// The reversed participant may earn it again.
	redo, err := deps.Ledger.Submit(deps.Ctx, members[0].ID, challenge.ID, challenge.Flag)
	require.NoError(t, err)
	assert.True(t, redo.Success.Accepted)
	assert.False(t, redo.Success.FirstForCohort)
}
