package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const LoanStatusApproved = "APROBADO"

// DTOs for requests and responses

type ApproveLoanResponse struct {
	LoanID  string `json:"loan_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type GenerateScheduleResponse struct {
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// ReportSummary aggregates an installment list for display and print
type ReportSummary struct {
	Count        int             `json:"count"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
	OverdueCount int             `json:"overdue_count"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

type ReportResponse struct {
	LoanID       string         `json:"loan_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Summary      ReportSummary  `json:"summary"`
	Installments []*Installment `json:"installments"`
}
