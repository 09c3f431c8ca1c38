package challengedomain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveThreshold(t *testing.T) {
	assert.Equal(t, 3, EffectiveThreshold(3, 0))
	assert.Equal(t, 2, EffectiveThreshold(3, 2))
	assert.Equal(t, 3, EffectiveThreshold(3, 3))
	assert.Equal(t, 3, EffectiveThreshold(3, 9))
	assert.Equal(t, 0, EffectiveThreshold(0, 0))
}

func TestIsAvailable(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	twoOfThree := Challenge{Type: TypeUnlocking, Prerequisites: []uuid.UUID{a, b, c}, RequiredCount: 2}
	allOfThree := Challenge{Type: TypeUnlocking, Prerequisites: []uuid.UUID{a, b, c}}

	tests := []struct {
		name      string
		challenge Challenge
		completed ChallengeSet
		want      bool
	}{
		{"two of three with A and B", twoOfThree, NewChallengeSet(a, b), true},
		{"two of three with only A", twoOfThree, NewChallengeSet(a), false},
		{"all of three with A and B", allOfThree, NewChallengeSet(a, b), false},
		{"all of three with all", allOfThree, NewChallengeSet(a, b, c), true},
		{"unrelated completions ignored", twoOfThree, NewChallengeSet(a, uuid.New(), uuid.New()), false},
		{"unlocking with no prerequisites", Challenge{Type: TypeUnlocking}, NewChallengeSet(), true},
		{"normal never gated", Challenge{Type: TypeNormal}, NewChallengeSet(), true},
		{"exclusive never gated", Challenge{Type: TypeExclusive, Prerequisites: []uuid.UUID{a}}, NewChallengeSet(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAvailable(tt.challenge, tt.completed))
		})
	}
}

func TestValidatePrerequisiteEdit(t *testing.T) {
	x, y, z, w := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	// y requires z, z requires x.
	g := Graph{x: nil, y: {z}, z: {x}, w: nil}

	t.Run("direct cycle rejected", func(t *testing.T) {
		g2 := Graph{x: nil, y: {x}}
		err := ValidatePrerequisiteEdit(g2, x, []uuid.UUID{y})
		require.ErrorIs(t, err, ErrPrerequisiteCycle)
		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []uuid.UUID{x, y, x}, cycleErr.Path)
	})

	t.Run("transitive cycle rejected", func(t *testing.T) {
		err := ValidatePrerequisiteEdit(g, x, []uuid.UUID{y})
		require.ErrorIs(t, err, ErrPrerequisiteCycle)
		assert.Nil(t, g[x], "graph must not be modified")
	})

	t.Run("acyclic edit accepted", func(t *testing.T) {
		assert.NoError(t, ValidatePrerequisiteEdit(g, w, []uuid.UUID{x, y, z}))
	})

	t.Run("self reference", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePrerequisiteEdit(g, w, []uuid.UUID{w}), ErrSelfPrerequisite)
	})

	t.Run("unknown prerequisite", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePrerequisiteEdit(g, w, []uuid.UUID{uuid.New()}), ErrUnknownPrerequisite)
	})

	t.Run("unknown challenge", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePrerequisiteEdit(g, uuid.New(), nil), ErrUnknownPrerequisite)
	})

	t.Run("clearing prerequisites accepted", func(t *testing.T) {
		assert.NoError(t, ValidatePrerequisiteEdit(g, y, nil))
	})
}

func TestGraphValidate(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.NoError(t, Graph{a: {b}, b: {c}, c: nil}.Validate())

	err := Graph{a: {b}, b: {c}, c: {a}}.Validate()
	require.ErrorIs(t, err, ErrPrerequisiteCycle)
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Len(t, cycleErr.Path, 4)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[3])

	assert.ErrorIs(t, Graph{a: {a}}.Validate(), ErrPrerequisiteCycle)
}

func TestValidatePrerequisiteEdit_TerminatesOnCorruptGraph(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	// a and b already loop; the edit on d must still return.
	g := Graph{a: {b}, b: {a}, c: nil, d: nil}
	assert.NoError(t, ValidatePrerequisiteEdit(g, d, []uuid.UUID{a, c}))
}
