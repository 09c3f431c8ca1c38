package challengemigrations

import (
	"context"
	"fmt"

	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating challenges and challenge_prerequisites tables...")

		if _, err := db.NewCreateTable().Model((*challengedb.Challenge)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewCreateTable().
			Model((*challengedb.Prerequisite)(nil)).
			IfNotExists().
			ForeignKey(`("challenge_id") REFERENCES "challenges" ("id") ON DELETE CASCADE`).
			ForeignKey(`("prerequisite_id") REFERENCES "challenges" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		statements := []string{
			`ALTER TABLE challenges ADD CONSTRAINT chk_challenges_type
				CHECK (type IN ('normal', 'exclusive', 'decreasing', 'unlocking'))`,
			`ALTER TABLE challenges ADD CONSTRAINT chk_challenges_points CHECK (points >= 1)`,
			`ALTER TABLE challenges ADD CONSTRAINT chk_challenges_decay
				CHECK ((type = 'decreasing' AND decay_percent BETWEEN 1 AND 99) OR (type <> 'decreasing' AND decay_percent = 0))`,
			`ALTER TABLE challenges ADD CONSTRAINT chk_challenges_required_count CHECK (required_count >= 0)`,
			`ALTER TABLE challenge_prerequisites ADD CONSTRAINT chk_prerequisite_not_self
				CHECK (challenge_id <> prerequisite_id)`,
			`CREATE INDEX IF NOT EXISTS idx_challenge_prerequisites_prerequisite
				ON challenge_prerequisites (prerequisite_id)`,
			`CREATE INDEX IF NOT EXISTS idx_challenges_due_release
				ON challenges (release_at) WHERE timed_release AND NOT released`,
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		fmt.Println("Challenge tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping challenge tables...")

		if _, err := db.NewDropTable().Model((*challengedb.Prerequisite)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*challengedb.Challenge)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Challenge tables dropped successfully!")
		return nil
	})
}
