package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterCohort creates a cohort and records who created it.
func (s *LedgerService) RegisterCohort(ctx context.Context, name string, sortOrder int, actorID uuid.UUID) (CohortOutcome, error) {
	name = strings.TrimSpace(name)
	return withTelemetry(s, ctx, "RegisterCohort", name, func(ctx context.Context) (CohortOutcome, error) {
		if name == "" {
			return results.FailureResult[ledgerdomain.Cohort, error](
				fmt.Errorf("%w: cohort name is required", ErrValidation)), nil
		}
		if actorID == uuid.Nil {
			return results.FailureResult[ledgerdomain.Cohort, error](
				fmt.Errorf("%w: actor id is required", ErrValidation)), nil
		}

		return runInTx(s, ctx, "RegisterCohort", func(ctx context.Context, tx bun.IDB) (CohortOutcome, error) {
			row := &ledgerdb.Cohort{Name: name, SortOrder: sortOrder}
			if err := s.repo.CreateCohort(ctx, tx, row); err != nil {
				if errors.Is(err, ledgerdb.ErrDuplicateCohort) {
					return results.FailureResult[ledgerdomain.Cohort, error](
						fmt.Errorf("%w: cohort %q already exists", ErrValidation, name)), nil
				}
				return CohortOutcome{}, err
			}

			entry := &ledgerdb.AuditEntry{
				Action:     ledgerdb.ActionRegisterCohort,
				ActorID:    actorID,
				TargetType: "cohort",
				TargetID:   row.ID,
				Snapshot:   map[string]any{"name": row.Name, "sort_order": row.SortOrder},
				CreatedAt:  s.clock.Now(),
			}
			if err := s.repo.InsertAuditEntry(ctx, tx, entry); err != nil {
				return CohortOutcome{}, err
			}

			s.logger.InfoContext(ctx, "Cohort registered",
				attr.UUID("cohort_id", row.ID),
				attr.String("name", row.Name),
				attr.UUID("actor_id", actorID),
			)
			return results.SuccessResult[ledgerdomain.Cohort, error](row.ToDomain()), nil
		})
	})
}

// RegisterParticipant upserts a participant pushed by the identity
// provider. Moving a participant to another cohort does not move their
// existing completions.
func (s *LedgerService) RegisterParticipant(ctx context.Context, p ledgerdomain.Participant) (ParticipantOutcome, error) {
	return withTelemetry(s, ctx, "RegisterParticipant", p.ID.String(), func(ctx context.Context) (ParticipantOutcome, error) {
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		if err := p.Validate(); err != nil {
			return results.FailureResult[ledgerdomain.Participant, error](fmt.Errorf("%w: %w", ErrValidation, err)), nil
		}

		if _, err := s.repo.GetCohort(ctx, nil, p.CohortID); err != nil {
			if errors.Is(err, ledgerdb.ErrNotFound) {
				return results.FailureResult[ledgerdomain.Participant, error](
					fmt.Errorf("%w: cohort %s", ErrNotFound, p.CohortID)), nil
			}
			return ParticipantOutcome{}, err
		}

		row := &ledgerdb.Participant{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			CohortID:    p.CohortID,
			IsStaff:     p.IsStaff,
		}
		if err := s.repo.UpsertParticipant(ctx, nil, row); err != nil {
			return ParticipantOutcome{}, err
		}
		return results.SuccessResult[ledgerdomain.Participant, error](row.ToDomain()), nil
	})
}

func (s *LedgerService) ListCohorts(ctx context.Context) ([]ledgerdomain.Cohort, error) {
	rows, err := s.repo.ListCohorts(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]ledgerdomain.Cohort, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
