package challengehandlers

import (
	"context"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/google/uuid"
)

// FakeChallengeService is a programmable stub for challengeservice.Service.
type FakeChallengeService struct {
	CreateChallengeFunc      func(ctx context.Context, in challengeservice.ChallengeInput) (challengeservice.ChallengeResult, error)
	UpdateChallengeFunc      func(ctx context.Context, id uuid.UUID, in challengeservice.ChallengeInput) (challengeservice.ChallengeResult, error)
	GetChallengeFunc         func(ctx context.Context, id uuid.UUID) (challengeservice.ChallengeResult, error)
	ListChallengesFunc       func(ctx context.Context) ([]challengedomain.Challenge, error)
	SetPrerequisitesFunc     func(ctx context.Context, id uuid.UUID, prerequisites []uuid.UUID, requiredCount int) (challengeservice.ChallengeResult, error)
	CheckGraphFunc           func(ctx context.Context) error
	ReleaseChallengeFunc     func(ctx context.Context, id uuid.UUID) (challengeservice.ChallengeResult, error)
	ScheduleReleaseFunc      func(ctx context.Context, id uuid.UUID, when string, timezone string) (challengeservice.ChallengeResult, error)
	ReleaseDueChallengesFunc func(ctx context.Context, dryRun bool) (challengeservice.ReleaseResult, error)
}

func (f *FakeChallengeService) CreateChallenge(ctx context.Context, in challengeservice.ChallengeInput) (challengeservice.ChallengeResult, error) {
	if f.CreateChallengeFunc != nil {
		return f.CreateChallengeFunc(ctx, in)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) UpdateChallenge(ctx context.Context, id uuid.UUID, in challengeservice.ChallengeInput) (challengeservice.ChallengeResult, error) {
	if f.UpdateChallengeFunc != nil {
		return f.UpdateChallengeFunc(ctx, id, in)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) GetChallenge(ctx context.Context, id uuid.UUID) (challengeservice.ChallengeResult, error) {
	if f.GetChallengeFunc != nil {
		return f.GetChallengeFunc(ctx, id)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) ListChallenges(ctx context.Context) ([]challengedomain.Challenge, error) {
	if f.ListChallengesFunc != nil {
		return f.ListChallengesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeChallengeService) SetPrerequisites(ctx context.Context, id uuid.UUID, prerequisites []uuid.UUID, requiredCount int) (challengeservice.ChallengeResult, error) {
	if f.SetPrerequisitesFunc != nil {
		return f.SetPrerequisitesFunc(ctx, id, prerequisites, requiredCount)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) CheckGraph(ctx context.Context) error {
	if f.CheckGraphFunc != nil {
		return f.CheckGraphFunc(ctx)
	}
	return nil
}

func (f *FakeChallengeService) ReleaseChallenge(ctx context.Context, id uuid.UUID) (challengeservice.ChallengeResult, error) {
	if f.ReleaseChallengeFunc != nil {
		return f.ReleaseChallengeFunc(ctx, id)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) ScheduleRelease(ctx context.Context, id uuid.UUID, when string, timezone string) (challengeservice.ChallengeResult, error) {
	if f.ScheduleReleaseFunc != nil {
		return f.ScheduleReleaseFunc(ctx, id, when, timezone)
	}
	return challengeservice.ChallengeResult{}, nil
}

func (f *FakeChallengeService) ReleaseDueChallenges(ctx context.Context, dryRun bool) (challengeservice.ReleaseResult, error) {
	if f.ReleaseDueChallengesFunc != nil {
		return f.ReleaseDueChallengesFunc(ctx, dryRun)
	}
	return challengeservice.ReleaseResult{}, nil
}

var _ challengeservice.Service = (*FakeChallengeService)(nil)
