package challengedomain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCurrentPoints(t *testing.T) {
	decreasing := Challenge{Type: TypeDecreasing, Points: 100, DecayPercent: 20}

	assert.Equal(t, 100, CurrentPoints(decreasing, 0))
	assert.Equal(t, 80, CurrentPoints(decreasing, 1))
	assert.Equal(t, 64, CurrentPoints(decreasing, 2))
	assert.Equal(t, 51, CurrentPoints(decreasing, 3))

	for _, typ := range []Type{TypeNormal, TypeExclusive, TypeUnlocking} {
		c := Challenge{Type: typ, Points: 250}
		assert.Equal(t, 250, CurrentPoints(c, 7), "type %s should not decay", typ)
	}
}

func TestDecayedPoints_Floor(t *testing.T) {
	assert.Equal(t, 1, DecayedPoints(10, 99, 5))
	assert.Equal(t, 1, DecayedPoints(1, 50, 1))
}

func TestDecayedPoints_HalfToEven(t *testing.T) {
	// 5 * 0.5 = 2.5
	assert.Equal(t, 2, DecayedPoints(5, 50, 1))
	// 7 * 0.5 = 3.5
	assert.Equal(t, 4, DecayedPoints(7, 50, 1))
}

func TestDecayedPoints_NonIncreasing(t *testing.T) {
	for _, base := range []int{1, 7, 50, 100, 333, 1000} {
		for d := 1; d <= 99; d++ {
			prev := DecayedPoints(base, d, 0)
			for n := 1; n <= 15; n++ {
				cur := DecayedPoints(base, d, n)
				if cur > prev {
					t.Fatalf("base=%d D=%d: value rose from %d to %d at n=%d", base, d, prev, cur, n)
				}
				if cur < 1 {
					t.Fatalf("base=%d D=%d n=%d: value %d below floor", base, d, n, cur)
				}
				prev = cur
			}
		}
	}
}

func TestDecaySchedule(t *testing.T) {
	assert.Equal(t, []int{100, 80, 64, 51}, DecaySchedule(100, 20, 4))
	assert.Empty(t, DecaySchedule(100, 20, 0))
}

func TestDecayTable(t *testing.T) {
	a := Challenge{ID: uuid.New(), Type: TypeDecreasing, Points: 100, DecayPercent: 20}
	b := Challenge{ID: uuid.New(), Type: TypeDecreasing, Points: 50, DecayPercent: 50}
	n := Challenge{ID: uuid.New(), Type: TypeNormal, Points: 10}

	table := DecayTable([]Challenge{a, b, n}, map[uuid.UUID]int{a.ID: 2})

	assert.Equal(t, map[uuid.UUID]int{a.ID: 64, b.ID: 50}, table)
}
