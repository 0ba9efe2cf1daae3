package repository

import (
	"context"
	"time"

	"github.com/segyhp/loan-console/internal/domain"
)

// JournalRepository defines the reconciliation journal operations.
// Only attempts whose ledger movement went through are journaled.
type JournalRepository interface {
	// RecordLedgerPosted stores a new entry in LEDGER_POSTED state
	RecordLedgerPosted(ctx context.Context, entry *domain.JournalEntry) error

	// UpdateStatus moves the entry with the given idempotency key to a new status
	UpdateStatus(ctx context.Context, idempotencyKey, status, lastError string) error

	// HasOpenEntry reports whether the installment has an unreconciled ledger movement
	HasOpenEntry(ctx context.Context, installmentID string) (bool, error)

	// ListOpen returns open entries created before the given time, oldest first
	ListOpen(ctx context.Context, before time.Time, limit int) ([]*domain.JournalEntry, error)
}

// PaymentLock guards an installment against concurrent payment attempts
type PaymentLock interface {
	// Acquire takes the lock for the installment. ok is false when someone else holds it.
	Acquire(ctx context.Context, installmentID string) (release func(), ok bool, err error)
}
