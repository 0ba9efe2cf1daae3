package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-console/internal/domain"
)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) RecordLedgerPosted(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateStatus(ctx context.Context, idempotencyKey, status, lastError string) error {
	args := m.Called(ctx, idempotencyKey, status, lastError)
	return args.Error(0)
}

func (m *MockJournalRepository) HasOpenEntry(ctx context.Context, installmentID string) (bool, error) {
	args := m.Called(ctx, installmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) ListOpen(ctx context.Context, before time.Time, limit int) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JournalEntry), args.Error(1)
}

type MockPaymentLock struct {
	mock.Mock
	Released int
}

func (m *MockPaymentLock) Acquire(ctx context.Context, installmentID string) (func(), bool, error) {
	args := m.Called(ctx, installmentID)
	if !args.Bool(0) || args.Error(1) != nil {
		return nil, args.Bool(0), args.Error(1)
	}
	return func() { m.Released++ }, true, nil
}

type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) NotifyStuck(ctx context.Context, entries []*domain.JournalEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}
