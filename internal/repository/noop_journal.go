package repository

import (
	"context"
	"time"

	"github.com/segyhp/loan-console/internal/domain"
)

type noopJournalRepository struct{}

// NewNoopJournalRepository is used when no database is configured
func NewNoopJournalRepository() JournalRepository {
	return noopJournalRepository{}
}

func (noopJournalRepository) RecordLedgerPosted(context.Context, *domain.JournalEntry) error {
	return nil
}

func (noopJournalRepository) UpdateStatus(context.Context, string, string, string) error {
	return nil
}

func (noopJournalRepository) HasOpenEntry(context.Context, string) (bool, error) {
	return false, nil
}

func (noopJournalRepository) ListOpen(context.Context, time.Time, int) ([]*domain.JournalEntry, error) {
	return nil, nil
}
