package ledgermigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the ledger module's schema history. Run after the
// challenge migrations; completions reference challenges.
var Migrations = migrate.NewMigrations()
