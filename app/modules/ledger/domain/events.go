package ledgerdomain

import (
	"time"

	"github.com/google/uuid"
)

// FirstSolve describes a cohort's first completion of a challenge. It is
// emitted only after the awarding transaction commits.
type FirstSolve struct {
	ChallengeID   uuid.UUID `json:"challenge_id"`
	ChallengeName string    `json:"challenge_name"`
	Category      string    `json:"category"`
	CohortID      uuid.UUID `json:"cohort_id"`
	CohortName    string    `json:"cohort_name"`
	Points        int       `json:"points"`
	SolverName    string    `json:"solver_name"`
	SolvedAt      time.Time `json:"solved_at"`
}

// Invalidation reports a completed reversal to the admin caller.
type Invalidation struct {
	CompletionID  uuid.UUID `json:"completion_id"`
	SubmissionID  uuid.UUID `json:"submission_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	ChallengeID   uuid.UUID `json:"challenge_id"`
	CohortID      uuid.UUID `json:"cohort_id"`
	PointsRemoved int       `json:"points_removed"`
	Reopened      bool      `json:"reopened"`
	Promoted      uuid.UUID `json:"promoted_completion_id,omitzero"`
	Message       string    `json:"message"`
}
