package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-console/internal/domain"
)

func TestRender(t *testing.T) {
	generated := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	r := &domain.ReportResponse{
		LoanID:      "42",
		GeneratedAt: generated,
		Summary: domain.ReportSummary{
			Count:        2,
			PaidCount:    1,
			PendingCount: 1,
			TotalDue:     decimal.RequireFromString("2300.5"),
		},
		Installments: []*domain.Installment{
			{
				ID:                "1",
				InstallmentNumber: 1,
				ScheduledDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				PrincipalAmount:   decimal.NewNullDecimal(decimal.RequireFromString("1000")),
				Total:             decimal.NewNullDecimal(decimal.RequireFromString("1150.25")),
				Status:            domain.InstallmentStatusPaid,
			},
			{
				ID:                "2",
				InstallmentNumber: 2,
				Total:             decimal.NewNullDecimal(decimal.RequireFromString("1150.25")),
				Status:            domain.InstallmentStatusPending,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Installment report - loan 42")
	assert.Contains(t, out, "15/01/2024")
	assert.Contains(t, out, "S/ 1,000.00")
	assert.Contains(t, out, "S/ 1,150.25")
	assert.Contains(t, out, `class="status-paid"`)
	assert.Contains(t, out, `class="status-pending"`)
	assert.Contains(t, out, "S/ 2,300.50")
	assert.Contains(t, out, "01/06/2024 09:30")
}

func TestRender_EscapesLoanID(t *testing.T) {
	r := &domain.ReportResponse{LoanID: "<script>x</script>", Summary: domain.ReportSummary{TotalDue: decimal.Zero}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))

	assert.NotContains(t, buf.String(), "<script>x</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}
