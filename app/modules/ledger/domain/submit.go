package ledgerdomain

import "github.com/google/uuid"

// Result is the outcome class reported to the submitting participant.
type Result string

const (
	ResultSuccess  Result = "success"
	ResultFailure  Result = "failure"
	ResultRejected Result = "rejected"
	ResultError    Result = "error"
)

// Reason explains a rejected or non-awarding submission.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonAlreadyCompleted Reason = "already_completed"
	ReasonLocked           Reason = "locked"
	ReasonUnavailable      Reason = "unavailable"
	ReasonNotReleased      Reason = "not_released"
	ReasonHuntInactive     Reason = "hunt_inactive"
)

// SubmitResult is returned for every graded submission.
type SubmitResult struct {
	Result         Result    `json:"result"`
	SubmissionID   uuid.UUID `json:"submission_id,omitzero"`
	PointsAwarded  int       `json:"points"`
	Accepted       bool      `json:"accepted"`
	FirstForCohort bool      `json:"first_for_cohort"`
	Reason         Reason    `json:"reason,omitempty"`
	// PreviouslyAwarded carries the earlier award on a repeat of a completed
	// challenge; PointsAwarded is 0 then.
	PreviouslyAwarded int `json:"previously_awarded,omitempty"`
	// DecayTable is set only when a decreasing challenge gained a new cohort.
	DecayTable map[uuid.UUID]int `json:"decreasing_challenges_update,omitempty"`
}

// Wrong is the result for an incorrect flag.
func Wrong(submissionID uuid.UUID) SubmitResult {
	return SubmitResult{Result: ResultFailure, SubmissionID: submissionID}
}

// Rejected is a zero-point result for a correct flag that may not count.
func Rejected(submissionID uuid.UUID, reason Reason) SubmitResult {
	return SubmitResult{Result: ResultRejected, SubmissionID: submissionID, Reason: reason}
}

// AlreadyCompleted is the zero-point result for a repeat correct flag.
func AlreadyCompleted(submissionID uuid.UUID, previous int, firstForCohort bool) SubmitResult {
	return SubmitResult{
		Result:            ResultRejected,
		SubmissionID:      submissionID,
		FirstForCohort:    firstForCohort,
		Reason:            ReasonAlreadyCompleted,
		PreviouslyAwarded: previous,
	}
}
