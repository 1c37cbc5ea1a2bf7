package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the loan store.
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
    lender_id      UUID NOT NULL,
    borrower_id    UUID NOT NULL,
    principal      NUMERIC NOT NULL DEFAULT 0,
    loan_amount    NUMERIC NOT NULL DEFAULT 0,
    initiation     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    current_period INT NOT NULL DEFAULT 0,
    total_periods  INT NOT NULL DEFAULT 0,
    period_unit    TEXT NOT NULL DEFAULT 'day',
    payments       JSONB NOT NULL DEFAULT '[]',
    fees           JSONB NOT NULL DEFAULT '[]',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
