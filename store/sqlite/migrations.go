package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the loan store (SQLite).
var Migrations = migrate.NewGroup("loansign")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_loansign_loans",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS loansign_loans (
    id             TEXT PRIMARY KEY,
    lender_id      TEXT NOT NULL DEFAULT '',
    borrower_id    TEXT NOT NULL DEFAULT '',
    principal      TEXT NOT NULL DEFAULT '0',
    loan_amount    TEXT NOT NULL DEFAULT '0',
    initiation     TEXT NOT NULL DEFAULT (datetime('now')),
    current_period INTEGER NOT NULL DEFAULT 0,
    total_periods  INTEGER NOT NULL DEFAULT 0,
    period_unit    TEXT NOT NULL DEFAULT 'day',
    payments       TEXT NOT NULL DEFAULT '[]',
    fees           TEXT NOT NULL DEFAULT '[]',
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_loansign_loans_lender ON loansign_loans (lender_id);
CREATE INDEX IF NOT EXISTS idx_loansign_loans_borrower ON loansign_loans (borrower_id);
CREATE INDEX IF NOT EXISTS idx_loansign_loans_created ON loansign_loans (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS loansign_loans`)
				return err
			},
		},
	)
}
