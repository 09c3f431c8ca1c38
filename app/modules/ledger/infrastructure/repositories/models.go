package ledgerdb

import (
	"context"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Cohort is a participant group ("class").
type Cohort struct {
	bun.BaseModel `bun:"table:cohorts,alias:co"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull,unique"`
	SortOrder int       `bun:"sort_order,notnull,default:0"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Cohort)(nil)

func (c *Cohort) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Cohort) ToDomain() ledgerdomain.Cohort {
	return ledgerdomain.Cohort{ID: c.ID, Name: c.Name, SortOrder: c.SortOrder}
}

// Participant ids come from the identity provider and are never generated here.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	DisplayName string    `bun:"display_name,notnull"`
	CohortID    uuid.UUID `bun:"cohort_id,notnull,type:uuid"`
	IsStaff     bool      `bun:"is_staff,notnull,default:false"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Cohort *Cohort `bun:"rel:belongs-to,join:cohort_id=id"`
}

func (p *Participant) ToDomain() ledgerdomain.Participant {
	return ledgerdomain.Participant{ID: p.ID, DisplayName: p.DisplayName, CohortID: p.CohortID, IsStaff: p.IsStaff}
}

// Submission is the append-only attempt log. Only the invalidation columns
// and points_awarded are ever updated, and only by invalidation.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	ParticipantID uuid.UUID `bun:"participant_id,notnull,type:uuid"`
	ChallengeID   uuid.UUID `bun:"challenge_id,notnull,type:uuid"`
	CohortID      uuid.UUID `bun:"cohort_id,notnull,type:uuid"`
	SubmittedFlag string    `bun:"submitted_flag,notnull"`
	Correct       bool      `bun:"correct,notnull"`
	PointsAwarded int       `bun:"points_awarded,notnull,default:0"`
	Invalidated   bool      `bun:"invalidated,notnull,default:false"`
	InvalidatedBy uuid.UUID `bun:"invalidated_by,nullzero,type:uuid"`
	InvalidatedAt time.Time `bun:"invalidated_at,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Submission)(nil)

func (s *Submission) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Completion is the authoritative award, unique per (participant, challenge).
type Completion struct {
	bun.BaseModel `bun:"table:completions,alias:cm"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	ParticipantID  uuid.UUID `bun:"participant_id,notnull,type:uuid"`
	ChallengeID    uuid.UUID `bun:"challenge_id,notnull,type:uuid"`
	CohortID       uuid.UUID `bun:"cohort_id,notnull,type:uuid"`
	SubmissionID   uuid.UUID `bun:"submission_id,notnull,type:uuid"`
	PointsEarned   int       `bun:"points_earned,notnull"`
	FirstForCohort bool      `bun:"first_for_cohort,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

var _ bun.BeforeInsertHook = (*Completion)(nil)

func (c *Completion) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Snapshot captures the completion for the audit log before it is deleted.
func (c *Completion) Snapshot() map[string]any {
	return map[string]any{
		"completion_id":    c.ID,
		"participant_id":   c.ParticipantID,
		"challenge_id":     c.ChallengeID,
		"cohort_id":        c.CohortID,
		"submission_id":    c.SubmissionID,
		"points_earned":    c.PointsEarned,
		"first_for_cohort": c.FirstForCohort,
		"completed_at":     c.CreatedAt,
	}
}

// Audit actions.
const (
	ActionInvalidateCompletion = "invalidate_completion"
	ActionInvalidateSubmission = "invalidate_submission"
	ActionRegisterCohort       = "register_cohort"
)

// AuditEntry records an admin action with the pre-mutation state.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_entries,alias:ae"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	Action     string         `bun:"action,notnull"`
	ActorID    uuid.UUID      `bun:"actor_id,notnull,type:uuid"`
	TargetType string         `bun:"target_type,notnull"`
	TargetID   uuid.UUID      `bun:"target_id,notnull,type:uuid"`
	Snapshot   map[string]any `bun:"snapshot,type:jsonb,notnull"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*AuditEntry)(nil)

func (a *AuditEntry) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
