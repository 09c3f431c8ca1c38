package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
)

// TestDataGenerator builds plausible cohorts, participants and challenges.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator; pass a seed for repeatable data.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// CohortNames returns n distinct cohort names.
func (g *TestDataGenerator) CohortNames(n int) []string {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := fmt.Sprintf("Class of %d %s", 2026+len(names), g.faker.Animal())
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Participants returns n non-staff participants in cohortID.
func (g *TestDataGenerator) Participants(cohortID uuid.UUID, n int) []ledgerdomain.Participant {
	out := make([]ledgerdomain.Participant, n)
	for i := range out {
		out[i] = ledgerdomain.Participant{
			ID:          uuid.New(),
			DisplayName: g.faker.Name(),
			CohortID:    cohortID,
		}
	}
	return out
}

// Challenge returns a released challenge input of the given type.
func (g *TestDataGenerator) Challenge(typ challengedomain.Type, points int) challengeservice.ChallengeInput {
	in := challengeservice.ChallengeInput{
		Name:        fmt.Sprintf("%s %s %s", g.faker.HackerAdjective(), g.faker.HackerNoun(), g.faker.LetterN(4)),
		Description: g.faker.HackerPhrase(),
		Category:    g.faker.RandomString([]string{"Web", "Crypto", "Forensics", "Misc"}),
		Flag:        fmt.Sprintf("FLAG{%s_%s}", g.faker.Word(), g.faker.LetterN(6)),
		Points:      points,
		Type:        typ,
		Released:    true,
	}
	if typ == challengedomain.TypeDecreasing {
		in.DecayPercent = 20
	}
	return in
}
