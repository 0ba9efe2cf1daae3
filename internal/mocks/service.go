package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-console/internal/domain"
)

type MockConsoleService struct {
	mock.Mock
}

func (m *MockConsoleService) ApproveLoan(ctx context.Context, loanID string) (*domain.ApproveLoanResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApproveLoanResponse), args.Error(1)
}

func (m *MockConsoleService) GenerateSchedule(ctx context.Context, clientID string) (*domain.GenerateScheduleResponse, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerateScheduleResponse), args.Error(1)
}

func (m *MockConsoleService) ListInstallments(ctx context.Context, loanID string, page int) (*domain.InstallmentPage, error) {
	args := m.Called(ctx, loanID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPage), args.Error(1)
}

func (m *MockConsoleService) PayInstallment(ctx context.Context, loanID, installmentID string, request *domain.PayInstallmentRequest) (*domain.PayInstallmentResponse, error) {
	args := m.Called(ctx, loanID, installmentID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayInstallmentResponse), args.Error(1)
}

func (m *MockConsoleService) Report(ctx context.Context, loanID string) (*domain.ReportResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportResponse), args.Error(1)
}
