package ledgermigrations

import (
	"context"
	"fmt"

	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ledger tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*ledgerdb.Cohort)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}

			_, err := tx.NewCreateTable().
				Model((*ledgerdb.Participant)(nil)).
				IfNotExists().
				ForeignKey(`("cohort_id") REFERENCES "cohorts" ("id")`).
				Exec(ctx)
			if err != nil {
				return err
			}

			_, err = tx.NewCreateTable().
				Model((*ledgerdb.Submission)(nil)).
				IfNotExists().
				ForeignKey(`("participant_id") REFERENCES "participants" ("id")`).
				ForeignKey(`("challenge_id") REFERENCES "challenges" ("id") ON DELETE CASCADE`).
				ForeignKey(`("cohort_id") REFERENCES "cohorts" ("id")`).
				Exec(ctx)
			if err != nil {
				return err
			}

			_, err = tx.NewCreateTable().
				Model((*ledgerdb.Completion)(nil)).
				IfNotExists().
				ForeignKey(`("participant_id") REFERENCES "participants" ("id")`).
				ForeignKey(`("challenge_id") REFERENCES "challenges" ("id") ON DELETE CASCADE`).
				ForeignKey(`("cohort_id") REFERENCES "cohorts" ("id")`).
				ForeignKey(`("submission_id") REFERENCES "submissions" ("id")`).
				Exec(ctx)
			if err != nil {
				return err
			}

			if _, err := tx.NewCreateTable().Model((*ledgerdb.AuditEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}

			statements := []string{
				// One award per participant and challenge.
				`ALTER TABLE completions ADD CONSTRAINT uq_completions_participant_challenge
					UNIQUE (participant_id, challenge_id)`,
				// At most one first solve per cohort and challenge.
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_completions_first_for_cohort
					ON completions (challenge_id, cohort_id) WHERE first_for_cohort`,
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_completions_submission ON completions (submission_id)`,
				`CREATE INDEX IF NOT EXISTS idx_completions_cohort ON completions (cohort_id, challenge_id)`,
				`ALTER TABLE completions ADD CONSTRAINT chk_completions_points CHECK (points_earned >= 0)`,
				`ALTER TABLE completions ADD CONSTRAINT chk_completions_first_scores
					CHECK (first_for_cohort OR points_earned = 0)`,
				`CREATE INDEX IF NOT EXISTS idx_submissions_challenge ON submissions (challenge_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_submissions_participant ON submissions (participant_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_participants_cohort ON participants (cohort_id)`,
				`CREATE INDEX IF NOT EXISTS idx_audit_entries_target ON audit_entries (target_type, target_id)`,
			}
			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}

			fmt.Println("Ledger tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ledger tables...")

		models := []any{
			(*ledgerdb.AuditEntry)(nil),
			(*ledgerdb.Completion)(nil),
			(*ledgerdb.Submission)(nil),
			(*ledgerdb.Participant)(nil),
			(*ledgerdb.Cohort)(nil),
		}
		for _, m := range models {
			if _, err := db.NewDropTable().Model(m).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Ledger tables dropped successfully!")
		return nil
	})
}
