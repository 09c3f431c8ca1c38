package ledgerservice

import (
	"context"
	"slices"
	"sync"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ledger Repo
// ------------------------

// FakeLedgerRepository is a programmable stub for ledgerdb.Repository. Any
// method without a Func override falls back to a small in-memory store, so
// scenario tests can run several submissions back to back. The store has no
// transactions: writes made before a rollback stay visible.
type FakeLedgerRepository struct {
	mu    sync.Mutex
	trace []string

	Cohorts      map[uuid.UUID]*ledgerdb.Cohort
	Participants map[uuid.UUID]*ledgerdb.Participant
	Submissions  []*ledgerdb.Submission
	Completions  []*ledgerdb.Completion
	Audit        []*ledgerdb.AuditEntry

	CreateCohortFunc              func(ctx context.Context, db bun.IDB, c *ledgerdb.Cohort) error
	GetParticipantFunc            func(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Participant, error)
	InsertSubmissionFunc          func(ctx context.Context, db bun.IDB, s *ledgerdb.Submission) error
	GetCompletionFunc             func(ctx context.Context, db bun.IDB, participantID, challengeID uuid.UUID) (*ledgerdb.Completion, error)
	InsertCompletionFunc          func(ctx context.Context, db bun.IDB, c *ledgerdb.Completion) error
	MarkSubmissionInvalidatedFunc func(ctx context.Context, db bun.IDB, id, actorID uuid.UUID, at time.Time) error
	CohortStandingsFunc           func(ctx context.Context, db bun.IDB) ([]ledgerdomain.CohortStanding, error)
}

// NewFakeLedgerRepository initializes an empty fake.
func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{
		trace:        []string{},
		Cohorts:      map[uuid.UUID]*ledgerdb.Cohort{},
		Participants: map[uuid.UUID]*ledgerdb.Participant{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeLedgerRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLedgerRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// addParticipant seeds a cohort (if new) and a participant.
func (f *FakeLedgerRepository) addParticipant(cohortName string, cohortID uuid.UUID, staff bool) *ledgerdb.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	co, ok := f.Cohorts[cohortID]
	if !ok {
		co = &ledgerdb.Cohort{ID: cohortID, Name: cohortName}
		f.Cohorts[cohortID] = co
	}
	p := &ledgerdb.Participant{
		ID:          uuid.New(),
		DisplayName: cohortName + " solver",
		CohortID:    cohortID,
		IsStaff:     staff,
		Cohort:      co,
	}
	f.Participants[p.ID] = p
	return p
}

func (f *FakeLedgerRepository) CreateCohort(ctx context.Context, db bun.IDB, c *ledgerdb.Cohort) error {
	f.record("CreateCohort")
	if f.CreateCohortFunc != nil {
		return f.CreateCohortFunc(ctx, db, c)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.Cohorts {
		if existing.Name == c.Name {
			return ledgerdb.ErrDuplicateCohort
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.Cohorts[c.ID] = c
	return nil
}

func (f *FakeLedgerRepository) GetCohort(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Cohort, error) {
	f.record("GetCohort")
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.Cohorts[id]; ok {
		return c, nil
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) ListCohorts(ctx context.Context, db bun.IDB) ([]ledgerdb.Cohort, error) {
	f.record("ListCohorts")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledgerdb.Cohort, 0, len(f.Cohorts))
	for _, c := range f.Cohorts {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b ledgerdb.Cohort) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *FakeLedgerRepository) UpsertParticipant(ctx context.Context, db bun.IDB, p *ledgerdb.Participant) error {
	f.record("UpsertParticipant")
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.Cohort = f.Cohorts[p.CohortID]
	f.Participants[p.ID] = &cp
	return nil
}

func (f *FakeLedgerRepository) GetParticipant(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Participant, error) {
	f.record("GetParticipant")
	if f.GetParticipantFunc != nil {
		return f.GetParticipantFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Participants[id]; ok {
		return p, nil
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) InsertSubmission(ctx context.Context, db bun.IDB, s *ledgerdb.Submission) error {
	f.record("InsertSubmission")
	if f.InsertSubmissionFunc != nil {
		return f.InsertSubmissionFunc(ctx, db, s)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.Submissions = append(f.Submissions, s)
	return nil
}

func (f *FakeLedgerRepository) findSubmission(id uuid.UUID) *ledgerdb.Submission {
	for _, s := range f.Submissions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (f *FakeLedgerRepository) GetSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Submission, error) {
	f.record("GetSubmission")
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := f.findSubmission(id); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) LockSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Submission, error) {
	f.record("LockSubmission")
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := f.findSubmission(id); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) MarkSubmissionInvalidated(ctx context.Context, db bun.IDB, id, actorID uuid.UUID, at time.Time) error {
	f.record("MarkSubmissionInvalidated")
	if f.MarkSubmissionInvalidatedFunc != nil {
		return f.MarkSubmissionInvalidatedFunc(ctx, db, id, actorID, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.findSubmission(id)
	if s == nil || s.Invalidated {
		return ledgerdb.ErrNoRowsAffected
	}
	s.Invalidated = true
	s.PointsAwarded = 0
	s.InvalidatedBy = actorID
	s.InvalidatedAt = at
	return nil
}

func (f *FakeLedgerRepository) ListSubmissions(ctx context.Context, db bun.IDB) ([]ledgerdb.Submission, error) {
	f.record("ListSubmissions")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledgerdb.Submission, len(f.Submissions))
	for i, s := range f.Submissions {
		out[i] = *s
	}
	return out, nil
}

func (f *FakeLedgerRepository) GetCompletion(ctx context.Context, db bun.IDB, participantID, challengeID uuid.UUID) (*ledgerdb.Completion, error) {
	f.record("GetCompletion")
	if f.GetCompletionFunc != nil {
		return f.GetCompletionFunc(ctx, db, participantID, challengeID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Completions {
		if c.ParticipantID == participantID && c.ChallengeID == challengeID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) GetCompletionByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*ledgerdb.Completion, error) {
	f.record("GetCompletionByID")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Completions {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) GetCompletionBySubmission(ctx context.Context, db bun.IDB, submissionID uuid.UUID) (*ledgerdb.Completion, error) {
	f.record("GetCompletionBySubmission")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Completions {
		if c.SubmissionID == submissionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepository) CohortHasCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (bool, error) {
	f.record("CohortHasCompletion")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Completions {
		if c.ChallengeID == challengeID && c.CohortID == cohortID {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeLedgerRepository) CountFirstCohorts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (int, error) {
	f.record("CountFirstCohorts")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstCohorts()[challengeID], nil
}

func (f *FakeLedgerRepository) firstCohorts() map[uuid.UUID]int {
	seen := map[[2]uuid.UUID]bool{}
	out := map[uuid.UUID]int{}
	for _, c := range f.Completions {
		key := [2]uuid.UUID{c.ChallengeID, c.CohortID}
		if c.FirstForCohort && !seen[key] {
			seen[key] = true
			out[c.ChallengeID]++
		}
	}
	return out
}

func (f *FakeLedgerRepository) FirstCohortCounts(ctx context.Context, db bun.IDB) (map[uuid.UUID]int, error) {
	f.record("FirstCohortCounts")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstCohorts(), nil
}

func (f *FakeLedgerRepository) CohortCompletedChallenges(ctx context.Context, db bun.IDB, cohortID uuid.UUID) ([]uuid.UUID, error) {
	f.record("CohortCompletedChallenges")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, c := range f.Completions {
		if c.CohortID == cohortID && !slices.Contains(out, c.ChallengeID) {
			out = append(out, c.ChallengeID)
		}
	}
	return out, nil
}

func (f *FakeLedgerRepository) InsertCompletion(ctx context.Context, db bun.IDB, c *ledgerdb.Completion) error {
	f.record("InsertCompletion")
	if f.InsertCompletionFunc != nil {
		return f.InsertCompletionFunc(ctx, db, c)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.Completions {
		if existing.ParticipantID == c.ParticipantID && existing.ChallengeID == c.ChallengeID {
			return ledgerdb.ErrDuplicateCompletion
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.Completions = append(f.Completions, &cp)
	return nil
}

func (f *FakeLedgerRepository) DeleteCompletion(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("DeleteCompletion")
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.Completions, func(c *ledgerdb.Completion) bool { return c.ID == id })
	if i < 0 {
		return ledgerdb.ErrNotFound
	}
	f.Completions = slices.Delete(f.Completions, i, i+1)
	return nil
}

func (f *FakeLedgerRepository) EarliestCohortCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (*ledgerdb.Completion, error) {
	f.record("EarliestCohortCompletion")
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *ledgerdb.Completion
	for _, c := range f.Completions {
		if c.ChallengeID != challengeID || c.CohortID != cohortID {
			continue
		}
		if best == nil || c.CreatedAt.Before(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, ledgerdb.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *FakeLedgerRepository) PromoteFirstForCohort(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("PromoteFirstForCohort")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Completions {
		if c.ID == id {
			c.FirstForCohort = true
			return nil
		}
	}
	return ledgerdb.ErrNoRowsAffected
}

func (f *FakeLedgerRepository) ListCompletions(ctx context.Context, db bun.IDB) ([]ledgerdb.Completion, error) {
	f.record("ListCompletions")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledgerdb.Completion, len(f.Completions))
	for i, c := range f.Completions {
		out[i] = *c
	}
	return out, nil
}

func (f *FakeLedgerRepository) InsertAuditEntry(ctx context.Context, db bun.IDB, e *ledgerdb.AuditEntry) error {
	f.record("InsertAuditEntry")
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.Audit = append(f.Audit, e)
	return nil
}

func (f *FakeLedgerRepository) ListAuditEntries(ctx context.Context, db bun.IDB) ([]ledgerdb.AuditEntry, error) {
	f.record("ListAuditEntries")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledgerdb.AuditEntry, len(f.Audit))
	for i, e := range f.Audit {
		out[i] = *e
	}
	return out, nil
}

func (f *FakeLedgerRepository) CohortStandings(ctx context.Context, db bun.IDB) ([]ledgerdomain.CohortStanding, error) {
	f.record("CohortStandings")
	if f.CohortStandingsFunc != nil {
		return f.CohortStandingsFunc(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	byCohort := map[uuid.UUID]*ledgerdomain.CohortStanding{}
	for id, co := range f.Cohorts {
		byCohort[id] = &ledgerdomain.CohortStanding{CohortID: id, CohortName: co.Name}
	}
	for _, c := range f.Completions {
		st, ok := byCohort[c.CohortID]
		if !ok {
			continue
		}
		st.Points += c.PointsEarned
		st.Completions++
		if c.FirstForCohort {
			st.FirstSolves++
		}
	}
	out := make([]ledgerdomain.CohortStanding, 0, len(byCohort))
	for _, st := range byCohort {
		out = append(out, *st)
	}
	return out, nil
}

func (f *FakeLedgerRepository) ChallengeSolves(ctx context.Context, db bun.IDB, challengeID uuid.UUID) ([]ledgerdomain.CohortSolve, error) {
	f.record("ChallengeSolves")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ledgerdomain.CohortSolve
	for _, c := range f.Completions {
		if c.ChallengeID != challengeID {
			continue
		}
		i := slices.IndexFunc(out, func(cs ledgerdomain.CohortSolve) bool { return cs.CohortID == c.CohortID })
		if i < 0 {
			name := ""
			if co := f.Cohorts[c.CohortID]; co != nil {
				name = co.Name
			}
			out = append(out, ledgerdomain.CohortSolve{CohortID: c.CohortID, CohortName: name, FirstSolveAt: c.CreatedAt})
			i = len(out) - 1
		}
		out[i].Solvers++
		out[i].Points += c.PointsEarned
	}
	return out, nil
}

func (f *FakeLedgerRepository) SubmissionCounts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (int, int, error) {
	f.record("SubmissionCounts")
	f.mu.Lock()
	defer f.mu.Unlock()
	attempts, correct := 0, 0
	for _, s := range f.Submissions {
		if s.ChallengeID != challengeID {
			continue
		}
		attempts++
		if s.Correct {
			correct++
		}
	}
	return attempts, correct, nil
}

func (f *FakeLedgerRepository) ParticipantStats(ctx context.Context, db bun.IDB, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error) {
	f.record("ParticipantStats")
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := ledgerdomain.ParticipantStats{ParticipantID: participantID}
	for _, s := range f.Submissions {
		if s.ParticipantID == participantID {
			stats.Submissions++
			if s.Correct {
				stats.Correct++
			}
		}
	}
	for _, c := range f.Completions {
		if c.ParticipantID == participantID {
			stats.Completions++
			stats.PointsEarned += c.PointsEarned
		}
	}
	return stats, nil
}

var _ ledgerdb.Repository = (*FakeLedgerRepository)(nil)

// ------------------------
// Fake Challenge Repo
// ------------------------

// FakeChallengeRepository serves challenges from a map and implements the
// exclusive claim as a compare-and-set on the stored row.
type FakeChallengeRepository struct {
	mu         sync.Mutex
	trace      []string
	Challenges map[uuid.UUID]*challengedb.Challenge
	Prereqs    map[uuid.UUID][]uuid.UUID

	LockChallengeFunc  func(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error)
	ClaimExclusiveFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
}

func NewFakeChallengeRepository() *FakeChallengeRepository {
	return &FakeChallengeRepository{
		trace:      []string{},
		Challenges: map[uuid.UUID]*challengedb.Challenge{},
		Prereqs:    map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *FakeChallengeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeChallengeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeChallengeRepository) add(c *challengedb.Challenge) *challengedb.Challenge {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.Challenges[c.ID] = c
	return c
}

func (f *FakeChallengeRepository) get(id uuid.UUID) (*challengedb.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Challenges[id]
	if !ok {
		return nil, challengedb.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *FakeChallengeRepository) CreateChallenge(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error {
	f.record("CreateChallenge")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(c)
	return nil
}

func (f *FakeChallengeRepository) UpdateChallenge(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error {
	f.record("UpdateChallenge")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Challenges[c.ID] = c
	return nil
}

func (f *FakeChallengeRepository) GetChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error) {
	f.record("GetChallenge")
	return f.get(id)
}

func (f *FakeChallengeRepository) ListChallenges(ctx context.Context, db bun.IDB) ([]challengedb.Challenge, error) {
	f.record("ListChallenges")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]challengedb.Challenge, 0, len(f.Challenges))
	for _, c := range f.Challenges {
		out = append(out, *c)
	}
	return out, nil
}

func (f *FakeChallengeRepository) LockChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error) {
	f.record("LockChallenge")
	if f.LockChallengeFunc != nil {
		return f.LockChallengeFunc(ctx, db, id)
	}
	return f.get(id)
}

func (f *FakeChallengeRepository) GetPrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetPrerequisites")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Prereqs[id]), nil
}

func (f *FakeChallengeRepository) GetPrerequisiteGraph(ctx context.Context, db bun.IDB) (challengedomain.Graph, error) {
	f.record("GetPrerequisiteGraph")
	f.mu.Lock()
	defer f.mu.Unlock()
	g := challengedomain.Graph{}
	for id, reqs := range f.Prereqs {
		g[id] = slices.Clone(reqs)
	}
	return g, nil
}

func (f *FakeChallengeRepository) ReplacePrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID, requiredCount int, prerequisites []uuid.UUID) error {
	f.record("ReplacePrerequisites")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prereqs[id] = slices.Clone(prerequisites)
	if c, ok := f.Challenges[id]; ok {
		c.RequiredCount = requiredCount
	}
	return nil
}

func (f *FakeChallengeRepository) AcquireGraphLock(ctx context.Context, db bun.IDB) error {
	f.record("AcquireGraphLock")
	return nil
}

func (f *FakeChallengeRepository) ClaimExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	f.record("ClaimExclusive")
	if f.ClaimExclusiveFunc != nil {
		return f.ClaimExclusiveFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Challenges[id]
	if !ok || c.Locked {
		return false, nil
	}
	c.Locked = true
	return true, nil
}

func (f *FakeChallengeRepository) ReleaseExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	f.record("ReleaseExclusive")
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Challenges[id]
	if !ok || !c.Locked {
		return false, nil
	}
	c.Locked = false
	return true, nil
}

func (f *FakeChallengeRepository) CountSolvingCohorts(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error) {
	f.record("CountSolvingCohorts")
	return 0, nil
}

func (f *FakeChallengeRepository) ListDueReleases(ctx context.Context, db bun.IDB, now time.Time) ([]challengedb.Challenge, error) {
	f.record("ListDueReleases")
	return nil, nil
}

func (f *FakeChallengeRepository) MarkReleased(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error) {
	f.record("MarkReleased")
	return len(ids), nil
}

var _ challengedb.Repository = (*FakeChallengeRepository)(nil)

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu     sync.Mutex
	Events []ledgerdomain.FirstSolve
	Err    error
	// Deadline captures whether the notifier saw a bounded context.
	Deadline bool
}

func (n *FakeNotifier) FirstSolve(ctx context.Context, ev ledgerdomain.FirstSolve) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, n.Deadline = ctx.Deadline()
	n.Events = append(n.Events, ev)
	return n.Err
}

// ------------------------
// Fake Metrics
// ------------------------

// FakeMetrics counts notification outcomes and discards everything else.
type FakeMetrics struct {
	observability.NoopMetrics
	mu            sync.Mutex
	Notifications []string
}

func (m *FakeMetrics) RecordNotification(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, outcome)
}

// openHunt is a HuntWindow that is always open or always closed.
type openHunt bool

func (h openHunt) HuntOpen(time.Time) bool { return bool(h) }
