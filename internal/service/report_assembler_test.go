package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-console/internal/domain"
)

func installmentWith(id string, status domain.InstallmentStatus, total string) *domain.Installment {
	inst := &domain.Installment{ID: id, Status: status}
	if total != "" {
		inst.Total = decimal.NewNullDecimal(decimal.RequireFromString(total))
	}
	return inst
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		installments []*domain.Installment
		expected     domain.ReportSummary
	}{
		{
			name:     "empty list",
			expected: domain.ReportSummary{TotalDue: decimal.Zero},
		},
		{
			name: "mixed statuses",
			installments: []*domain.Installment{
				installmentWith("1", domain.InstallmentStatusPaid, "100.00"),
				installmentWith("2", domain.InstallmentStatusPending, "100.00"),
				installmentWith("3", domain.InstallmentStatusOverdue, "100.50"),
			},
			expected: domain.ReportSummary{
				Count:        3,
				PaidCount:    1,
				PendingCount: 1,
				OverdueCount: 1,
				TotalDue:     decimal.RequireFromString("300.50"),
			},
		},
		{
			name: "absent total counts as zero",
			installments: []*domain.Installment{
				installmentWith("1", domain.InstallmentStatusPending, ""),
				installmentWith("2", domain.InstallmentStatusPending, "42.10"),
			},
			expected: domain.ReportSummary{
				Count:        2,
				PendingCount: 2,
				TotalDue:     decimal.RequireFromString("42.10"),
			},
		},
		{
			name: "unknown status is counted but not classified",
			installments: []*domain.Installment{
				installmentWith("1", domain.InstallmentStatus(""), "10"),
			},
			expected: domain.ReportSummary{Count: 1, TotalDue: decimal.NewFromInt(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Summarize(tt.installments)

			assert.Equal(t, tt.expected.Count, summary.Count)
			assert.Equal(t, tt.expected.PaidCount, summary.PaidCount)
			assert.Equal(t, tt.expected.PendingCount, summary.PendingCount)
			assert.Equal(t, tt.expected.OverdueCount, summary.OverdueCount)
			assert.True(t, tt.expected.TotalDue.Equal(summary.TotalDue), "total due %s, want %s", summary.TotalDue, tt.expected.TotalDue)
		})
	}
}

func TestSummarize_TenInstallmentsThreePaid(t *testing.T) {
	installments := make([]*domain.Installment, 0, 10)
	for i := 0; i < 10; i++ {
		status := domain.InstallmentStatusPending
		if i < 3 {
			status = domain.InstallmentStatusPaid
		}
		installments = append(installments, installmentWith(string(rune('a'+i)), status, "100.00"))
	}

	summary := Summarize(installments)

	assert.Equal(t, 10, summary.Count)
	assert.Equal(t, 3, summary.PaidCount)
	assert.Equal(t, "1000.00", summary.TotalDue.StringFixed(2))
}

func TestSummarize_OrderDoesNotMatter(t *testing.T) {
	installments := []*domain.Installment{
		installmentWith("1", domain.InstallmentStatusPaid, "10.25"),
		installmentWith("2", domain.InstallmentStatusPending, "20.50"),
		installmentWith("3", domain.InstallmentStatusOverdue, "30.75"),
		installmentWith("4", domain.InstallmentStatusPending, ""),
		installmentWith("5", domain.InstallmentStatusPaid, "0.01"),
	}
	expected := Summarize(installments)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]*domain.Installment(nil), installments...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Summarize(shuffled)
		assert.Equal(t, expected.Count, got.Count)
		assert.Equal(t, expected.PaidCount, got.PaidCount)
		assert.Equal(t, expected.PendingCount, got.PendingCount)
		assert.Equal(t, expected.OverdueCount, got.OverdueCount)
		assert.True(t, expected.TotalDue.Equal(got.TotalDue))
	}
}

func TestAssembleReport(t *testing.T) {
	generatedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("nil list becomes empty", func(t *testing.T) {
		report := AssembleReport("LOAN-1", nil, generatedAt)

		require.NotNil(t, report)
		assert.Equal(t, "LOAN-1", report.LoanID)
		assert.Equal(t, generatedAt, report.GeneratedAt)
		assert.NotNil(t, report.Installments)
		assert.Empty(t, report.Installments)
		assert.Equal(t, 0, report.Summary.Count)
	})

	t.Run("keeps installments in order", func(t *testing.T) {
		installments := []*domain.Installment{
			installmentWith("2", domain.InstallmentStatusPending, "5"),
			installmentWith("1", domain.InstallmentStatusPaid, "5"),
		}

		report := AssembleReport("LOAN-1", installments, generatedAt)

		assert.Equal(t, installments, report.Installments)
		assert.Equal(t, 2, report.Summary.Count)
		assert.Equal(t, "10.00", report.Summary.TotalDue.StringFixed(2))
	})
}
