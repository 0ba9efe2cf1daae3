package client

import (
	"context"

	"github.com/segyhp/loan-console/internal/domain"
)

// LoanClient defines the loan-approval operations of the loan-servicing backend
type LoanClient interface {
	// Approve moves a client loan to the approved state
	Approve(ctx context.Context, loanID string) error
}

// ScheduleClient defines the installment-schedule operations of the loan-servicing backend
type ScheduleClient interface {
	// Generate asks the backend to build the installment schedule for a client loan
	Generate(ctx context.Context, clientID string) error

	// ListByLoan returns the installments of a client loan in schedule order
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error)

	// RegisterPayment marks an installment as paid. A conflict means it was no longer pending.
	RegisterPayment(ctx context.Context, registration domain.PaymentRegistration) error
}

// LedgerClient defines the core-banking ledger operations
type LedgerClient interface {
	// PostMovement books a monetary movement against an account
	PostMovement(ctx context.Context, movement domain.LedgerMovement) error
}
