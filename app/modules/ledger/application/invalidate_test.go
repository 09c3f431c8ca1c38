package ledgerservice

import (
	"context"
	"testing"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateCompletion_ReopensExclusive(t *testing.T) {
	h := newHarness(t, openHunt(true))
	c := h.challenge(challengedomain.TypeExclusive, 50, 0)
	winner := h.repo.addParticipant("Alpha", uuid.New(), false)
	other := h.repo.addParticipant("Bravo", uuid.New(), false)
	actor := uuid.New()

	won := h.submit(t, winner, c, "flag{answer}")
	require.Len(t, h.repo.Completions, 1)
	completionID := h.repo.Completions[0].ID

	res, err := h.svc.InvalidateCompletion(context.Background(), completionID, actor)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.True(t, res.Success.Reopened)
	assert.Equal(t, 50, res.Success.PointsRemoved)
	assert.Equal(t, won.SubmissionID, res.Success.SubmissionID)

	assert.False(t, h.chRepo.Challenges[c.ID].Locked)
	assert.Empty(t, h.repo.Completions)
	sub := h.repo.findSubmission(won.SubmissionID)
	assert.True(t, sub.Invalidated)
	assert.Equal(t, 0, sub.PointsAwarded)
	assert.Equal(t, actor, sub.InvalidatedBy)

	require.Len(t, h.repo.Audit, 1)
	entry := h.repo.Audit[0]
	assert.Equal(t, ledgerdb.ActionInvalidateCompletion, entry.Action)
	assert.Equal(t, 50, entry.Snapshot["points_earned"])
	assert.Equal(t, true, entry.Snapshot["challenge_locked"])

	// The reopened challenge can now be won by another cohort.
	got := h.submit(t, other, c, "flag{answer}")
	assert.Equal(t, ledgerdomain.ResultSuccess, got.Result)
	assert.Equal(t, 50, got.PointsAwarded)
}

func TestInvalidateSubmission_PromotesNextCohortSolver(t *testing.T) {
	h := newHarness(t, openHunt(true))
	c := h.challenge(challengedomain.TypeNormal, 30, 0)
	alpha := uuid.New()
	first := h.repo.addParticipant("Alpha", alpha, false)
	second := h.repo.addParticipant("Alpha", alpha, false)

	firstRes := h.submit(t, first, c, "flag{answer}")
	h.submit(t, second, c, "flag{answer}")

	res, err := h.svc.InvalidateSubmission(context.Background(), firstRes.SubmissionID, uuid.New())
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.False(t, res.Success.Reopened)
	assert.NotEqual(t, uuid.Nil, res.Success.Promoted)

	require.Len(t, h.repo.Completions, 1)
	remaining := h.repo.Completions[0]
	assert.Equal(t, second.ID, remaining.ParticipantID)
	assert.True(t, remaining.FirstForCohort)
	assert.Equal(t, 0, remaining.PointsEarned, "promotion does not re-award points")

	standings, err := h.svc.CohortStandings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, standings[0].Points)
}

func TestInvalidate_ReearnAfterReversal(t *testing.T) {
	h := newHarness(t, openHunt(true))
	c := h.challenge(challengedomain.TypeDecreasing, 100, 20)
	a := h.repo.addParticipant("Alpha", uuid.New(), false)
	b := h.repo.addParticipant("Bravo", uuid.New(), false)

	aRes := h.submit(t, a, c, "flag{answer}")
	h.submit(t, b, c, "flag{answer}")

	_, err := h.svc.InvalidateSubmission(context.Background(), aRes.SubmissionID, uuid.New())
	require.NoError(t, err)

	table, err := h.svc.DecayTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, table[c.ID], "only one first-for-cohort completion remains")

	again := h.submit(t, a, c, "flag{answer}")
	assert.Equal(t, 80, again.PointsAwarded)
	assert.True(t, again.Accepted)
}

func TestInvalidate_Failures(t *testing.T) {
	h := newHarness(t, openHunt(true))
	c := h.challenge(challengedomain.TypeNormal, 10, 0)
	p := h.repo.addParticipant("Alpha", uuid.New(), false)
	ctx := context.Background()

	wrong := h.submit(t, p, c, "flag{nope}")
	right := h.submit(t, p, c, "flag{answer}")

	tests := []struct {
		name string
		run  func() (InvalidationOutcome, error)
		want error
	}{
		{
			name: "unknown completion",
			run:  func() (InvalidationOutcome, error) { return h.svc.InvalidateCompletion(ctx, uuid.New(), uuid.New()) },
			want: ErrNotFound,
		},
		{
			name: "unknown submission",
			run:  func() (InvalidationOutcome, error) { return h.svc.InvalidateSubmission(ctx, uuid.New(), uuid.New()) },
			want: ErrNotFound,
		},
		{
			name: "missing actor",
			run: func() (InvalidationOutcome, error) {
				return h.svc.InvalidateSubmission(ctx, right.SubmissionID, uuid.Nil)
			},
			want: ErrValidation,
		},
		{
			name: "wrong submission never awarded anything",
			run: func() (InvalidationOutcome, error) {
				return h.svc.InvalidateSubmission(ctx, wrong.SubmissionID, uuid.New())
			},
			want: ErrNoCompletion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			require.True(t, res.IsFailure())
			assert.ErrorIs(t, *res.Failure, tt.want)
		})
	}

	t.Run("second invalidation is refused", func(t *testing.T) {
		res, err := h.svc.InvalidateSubmission(ctx, right.SubmissionID, uuid.New())
		require.NoError(t, err)
		require.True(t, res.IsSuccess())

		res, err = h.svc.InvalidateSubmission(ctx, right.SubmissionID, uuid.New())
		require.NoError(t, err)
		require.True(t, res.IsFailure())
		assert.ErrorIs(t, *res.Failure, ErrAlreadyInvalidated)
		assert.Len(t, h.repo.Audit, 1)
	})
}
