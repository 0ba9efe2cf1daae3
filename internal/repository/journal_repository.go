package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/loan-console/internal/domain"
)

// JournalSchema creates the reconciliation journal table
const JournalSchema = `
	CREATE TABLE IF NOT EXISTS payment_journal (
		id              UUID PRIMARY KEY,
		idempotency_key TEXT NOT NULL UNIQUE,
		loan_id         TEXT NOT NULL,
		installment_id  TEXT NOT NULL,
		amount          NUMERIC(18, 2) NOT NULL,
		payment_method  TEXT NOT NULL,
		reference       TEXT NOT NULL,
		status          TEXT NOT NULL,
		last_error      TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS payment_journal_open_idx
		ON payment_journal (installment_id) WHERE status IN ('LEDGER_POSTED', 'REJECTED', 'STUCK');
`

type journalRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db, now: time.Now}
}

// Migrate creates the journal table if needed
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, JournalSchema)
	return err
}

func (r *journalRepository) RecordLedgerPosted(ctx context.Context, entry *domain.JournalEntry) error {
	query := `
		INSERT INTO payment_journal (id, idempotency_key, loan_id, installment_id, amount, payment_method, reference, status, last_error, created_at, updated_at)
		VALUES (:id, :idempotency_key, :loan_id, :installment_id, :amount, :payment_method, :reference, :status, :last_error, :created_at, :updated_at)
	`

	now := r.now().UTC()
	entry.Status = domain.JournalStatusLedgerPosted
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *journalRepository) UpdateStatus(ctx context.Context, idempotencyKey, status, lastError string) error {
	query := `
		UPDATE payment_journal
		SET status = $2, last_error = $3, updated_at = $4
		WHERE idempotency_key = $1
	`

	res, err := r.db.ExecContext(ctx, query, idempotencyKey, status, lastError, r.now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("journal entry %s: %w", idempotencyKey, sql.ErrNoRows)
	}
	return nil
}

func (r *journalRepository) HasOpenEntry(ctx context.Context, installmentID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payment_journal
			WHERE installment_id = $1 AND status = ANY($2)
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, installmentID, pq.Array(domain.OpenJournalStatuses))
	return exists, err
}

func (r *journalRepository) ListOpen(ctx context.Context, before time.Time, limit int) ([]*domain.JournalEntry, error) {
	query := `
		SELECT id, idempotency_key, loan_id, installment_id, amount, payment_method, reference, status, last_error, created_at, updated_at
		FROM payment_journal
		WHERE status = ANY($1) AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	var entries []*domain.JournalEntry
	err := r.db.SelectContext(ctx, &entries, query, pq.Array(domain.OpenJournalStatuses), before, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
