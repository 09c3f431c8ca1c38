package challengeservice

import (
	"context"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
)

// ChallengeResult carries one challenge or the domain reason it was refused.
type ChallengeResult = results.OperationResult[challengedomain.Challenge, error]

// ReleaseResult carries the challenges opened by a release pass.
type ReleaseResult = results.OperationResult[ReleaseSummary, error]

// Service defines the interface for challenge administration.
type Service interface {
	CreateChallenge(ctx context.Context, in ChallengeInput) (ChallengeResult, error)
	UpdateChallenge(ctx context.Context, id uuid.UUID, in ChallengeInput) (ChallengeResult, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (ChallengeResult, error)
	ListChallenges(ctx context.Context) ([]challengedomain.Challenge, error)

	// SetPrerequisites validates the edit for cycles before writing anything.
	SetPrerequisites(ctx context.Context, id uuid.UUID, prerequisites []uuid.UUID, requiredCount int) (ChallengeResult, error)
	// CheckGraph scans the stored graph and fails on any cycle.
	CheckGraph(ctx context.Context) error

	ReleaseChallenge(ctx context.Context, id uuid.UUID) (ChallengeResult, error)
	ScheduleRelease(ctx context.Context, id uuid.UUID, when string, timezone string) (ChallengeResult, error)
	ReleaseDueChallenges(ctx context.Context, dryRun bool) (ReleaseResult, error)
}

// ChallengeInput holds the editable challenge fields.
type ChallengeInput struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Category     string               `json:"category"`
	Flag         string               `json:"flag"`
	Points       int                  `json:"points"`
	Type         challengedomain.Type `json:"type"`
	DecayPercent int                  `json:"decay_percent"`
	Released     bool                 `json:"released"`
	TimedRelease bool                 `json:"timed_release"`
	ReleaseAt    time.Time            `json:"release_at"`
	SortOrder    int                  `json:"sort_order"`
}

// ReleaseSummary lists what a release pass opened, or would open on a dry run.
type ReleaseSummary struct {
	Released []challengedomain.Challenge
	DryRun   bool
}

var _ Service = (*ChallengeService)(nil)
