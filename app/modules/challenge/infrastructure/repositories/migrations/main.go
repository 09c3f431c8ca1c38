package challengemigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the challenge module's schema history.
var Migrations = migrate.NewMigrations()
