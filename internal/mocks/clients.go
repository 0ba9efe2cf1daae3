package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-console/internal/domain"
)

type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) PostMovement(ctx context.Context, movement domain.LedgerMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

type MockScheduleClient struct {
	mock.Mock
}

func (m *MockScheduleClient) Generate(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockScheduleClient) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockScheduleClient) RegisterPayment(ctx context.Context, registration domain.PaymentRegistration) error {
	args := m.Called(ctx, registration)
	return args.Error(0)
}

type MockLoanClient struct {
	mock.Mock
}

func (m *MockLoanClient) Approve(ctx context.Context, loanID string) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}
