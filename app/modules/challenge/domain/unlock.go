package challengedomain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrPrerequisiteCycle marks an edit or stored graph that forms a closed walk.
	ErrPrerequisiteCycle = errors.New("prerequisite cycle")

	// ErrSelfPrerequisite marks a challenge listed as its own prerequisite.
	ErrSelfPrerequisite = errors.New("challenge cannot require itself")

	// ErrUnknownPrerequisite marks a prerequisite id with no matching challenge.
	ErrUnknownPrerequisite = errors.New("unknown prerequisite")
)

// ChallengeSet is a set of challenge ids, typically a cohort's completions.
type ChallengeSet map[uuid.UUID]struct{}

// NewChallengeSet builds a set from ids.
func NewChallengeSet(ids ...uuid.UUID) ChallengeSet {
	s := make(ChallengeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ChallengeSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// EffectiveThreshold returns how many of k prerequisites must be complete.
// A required count of 0, or one at or above k, means all of them.
func EffectiveThreshold(k, required int) int {
	if required == 0 || required >= k {
		return k
	}
	return required
}

// IsAvailable reports whether a cohort with the given completed set may
// attempt c. Only unlocking challenges are gated. The check reads direct
// prerequisites only, so it cannot loop even on a corrupted graph.
func IsAvailable(c Challenge, completed ChallengeSet) bool {
	if c.Type != TypeUnlocking {
		return true
	}
	done := 0
	for _, id := range c.Prerequisites {
		if completed.Has(id) {
			done++
		}
	}
	return done >= EffectiveThreshold(len(c.Prerequisites), c.RequiredCount)
}

// Graph maps each challenge id to the ids it requires. Every known challenge
// is a key, even with no prerequisites.
type Graph map[uuid.UUID][]uuid.UUID

// CycleError names the closed walk an edit would create.
type CycleError struct {
	Path []uuid.UUID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", ErrPrerequisiteCycle, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrPrerequisiteCycle }

// ValidatePrerequisiteEdit checks replacing id's prerequisites with next.
// The edit is rejected when id becomes reachable from any old or new
// prerequisite along "requires" edges of the edited graph. g is not modified.
func ValidatePrerequisiteEdit(g Graph, id uuid.UUID, next []uuid.UUID) error {
	if _, ok := g[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrerequisite, id)
	}
	for _, p := range next {
		if p == id {
			return ErrSelfPrerequisite
		}
		if _, ok := g[p]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPrerequisite, p)
		}
	}

	proposed := make(Graph, len(g))
	for k, v := range g {
		proposed[k] = v
	}
	proposed[id] = next

	starts := append(slices.Clone(g[id]), next...)
	visited := make(map[uuid.UUID]bool)
	for _, start := range starts {
		if path := proposed.pathTo(start, id, visited, nil); path != nil {
			return &CycleError{Path: append([]uuid.UUID{id}, path...)}
		}
	}
	return nil
}

// pathTo walks "requires" edges depth-first from node and returns the path
// that ends at target, or nil. visited is shared across calls so each node
// is expanded at most once.
func (g Graph) pathTo(node, target uuid.UUID, visited map[uuid.UUID]bool, trail []uuid.UUID) []uuid.UUID {
	trail = append(trail, node)
	if node == target {
		return slices.Clone(trail)
	}
	if visited[node] {
		return nil
	}
	visited[node] = true
	for _, next := range g[node] {
		if path := g.pathTo(next, target, visited, trail); path != nil {
			return path
		}
	}
	return nil
}

// Cycles returns every strongly connected component that forms a cycle,
// using Tarjan's algorithm. An acyclic graph returns nil.
func (g Graph) Cycles() [][]uuid.UUID {
	var (
		index   int
		stack   []uuid.UUID
		indices = make(map[uuid.UUID]int)
		lowlink = make(map[uuid.UUID]int)
		onStack = make(map[uuid.UUID]bool)
		cycles  [][]uuid.UUID
	)

	var strongConnect func(uuid.UUID)
	strongConnect = func(v uuid.UUID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] != indices[v] {
			return
		}
		var scc []uuid.UUID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if len(scc) > 1 || slices.Contains(g[v], v) {
			cycles = append(cycles, scc)
		}
	}

	for node := range g {
		if _, seen := indices[node]; !seen {
			strongConnect(node)
		}
	}
	return cycles
}

// Validate fails with a CycleError if the stored graph contains any cycle.
// Availability must never be evaluated over such a graph.
func (g Graph) Validate() error {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	path := slices.Clone(cycles[0])
	slices.Reverse(path)
	return &CycleError{Path: append(path, path[0])}
}
