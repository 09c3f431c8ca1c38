package ledgerdomain

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// CohortStanding is a cohort's derived total. Points are always summed from
// completion rows, never stored.
type CohortStanding struct {
	CohortID    uuid.UUID `json:"cohort_id"`
	CohortName  string    `json:"cohort_name"`
	Points      int       `json:"points"`
	Completions int       `json:"completions"`
	FirstSolves int       `json:"first_solves"`
	Rank        int       `json:"rank"`
}

// RankStandings orders by points descending, then name, and assigns
// competition ranks (ties share a rank, the next rank skips).
func RankStandings(in []CohortStanding) []CohortStanding {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b CohortStanding) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.CohortName, b.CohortName)
	})
	for i := range out {
		if i > 0 && out[i].Points == out[i-1].Points {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// CohortSolve is one cohort's record against a single challenge.
type CohortSolve struct {
	CohortID     uuid.UUID `json:"cohort_id"`
	CohortName   string    `json:"cohort_name"`
	Solvers      int       `json:"solvers"`
	Points       int       `json:"points"`
	FirstSolveAt time.Time `json:"first_solve_at"`
}

// ChallengeStats summarizes who has solved a challenge.
type ChallengeStats struct {
	ChallengeID   uuid.UUID     `json:"challenge_id"`
	Attempts      int           `json:"attempts"`
	CorrectCount  int           `json:"correct"`
	CurrentPoints int           `json:"current_points"`
	Cohorts       []CohortSolve `json:"cohorts"`
}

// ParticipantStats summarizes one participant's activity.
type ParticipantStats struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Submissions   int       `json:"submissions"`
	Correct       int       `json:"correct"`
	Completions   int       `json:"completions"`
	PointsEarned  int       `json:"points_earned"`
}
