package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-console/internal/domain"
)

// Summarize counts installments by status and adds up their totals.
// An absent total counts as zero.
func Summarize(installments []*domain.Installment) domain.ReportSummary {
	summary := domain.ReportSummary{
		Count:    len(installments),
		TotalDue: decimal.Zero,
	}

	for _, inst := range installments {
		if inst == nil {
			continue
		}
		switch inst.Status {
		case domain.InstallmentStatusPaid:
			summary.PaidCount++
		case domain.InstallmentStatusPending:
			summary.PendingCount++
		case domain.InstallmentStatusOverdue:
			summary.OverdueCount++
		}
		summary.TotalDue = summary.TotalDue.Add(inst.TotalOrZero())
	}

	return summary
}

// AssembleReport builds the report payload for a loan
func AssembleReport(loanID string, installments []*domain.Installment, generatedAt time.Time) *domain.ReportResponse {
	if installments == nil {
		installments = []*domain.Installment{}
	}
	return &domain.ReportResponse{
		LoanID:       loanID,
		GeneratedAt:  generatedAt,
		Summary:      Summarize(installments),
		Installments: installments,
	}
}
