package challengedomain

import (
	"math"

	"github.com/google/uuid"
)

// CurrentPoints is the value the next first-for-cohort completion earns.
// cohortsSolved is the number of distinct cohorts that already hold a
// first-for-cohort completion and must be read before the new one is inserted.
func CurrentPoints(c Challenge, cohortsSolved int) int {
	if c.Type != TypeDecreasing {
		return c.Points
	}
	return DecayedPoints(c.Points, c.DecayPercent, cohortsSolved)
}

// DecayedPoints returns max(1, round(base * ((100-decay)/100)^n)).
// Halves round to even so 2.5 scores 2.
func DecayedPoints(base, decayPercent, n int) int {
	if n < 0 {
		n = 0
	}
	factor := float64(100-decayPercent) / 100
	v := math.RoundToEven(float64(base) * math.Pow(factor, float64(n)))
	return max(1, int(v))
}

// DecaySchedule lists the award for the 1st through cohorts-th solving cohort.
func DecaySchedule(base, decayPercent, cohorts int) []int {
	out := make([]int, 0, cohorts)
	for i := 0; i < cohorts; i++ {
		out = append(out, DecayedPoints(base, decayPercent, i))
	}
	return out
}

// DecayTable maps every decreasing challenge in challenges to its current value.
// solvedBy holds the first-for-cohort count per challenge.
func DecayTable(challenges []Challenge, solvedBy map[uuid.UUID]int) map[uuid.UUID]int {
	table := make(map[uuid.UUID]int)
	for _, c := range challenges {
		if c.Type != TypeDecreasing {
			continue
		}
		table[c.ID] = CurrentPoints(c, solvedBy[c.ID])
	}
	return table
}
