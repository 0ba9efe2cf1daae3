package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the schedule-side state of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// wire spellings used by the loan-servicing backend
var installmentStatusAliases = map[string]InstallmentStatus{
	"PENDIENTE": InstallmentStatusPending,
	"PAGADO":    InstallmentStatusPaid,
	"VENCIDO":   InstallmentStatusOverdue,
	"PENDING":   InstallmentStatusPending,
	"PAID":      InstallmentStatusPaid,
	"OVERDUE":   InstallmentStatusOverdue,
}

// ParseInstallmentStatus accepts both the backend and the console spelling
func ParseInstallmentStatus(s string) (InstallmentStatus, error) {
	status, ok := installmentStatusAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown installment status %q", s)
	}
	return status, nil
}

// Installment is a single row of a loan's payment schedule.
// Total and PrincipalAmount are nullable because the schedule service may omit them.
type Installment struct {
	ID                string              `json:"id"`
	LoanID            string              `json:"loan_id"`
	InstallmentNumber int                 `json:"installment_number"`
	ScheduledDate     time.Time           `json:"scheduled_date"`
	PrincipalAmount   decimal.NullDecimal `json:"principal_amount"`
	Interest          decimal.Decimal     `json:"interest"`
	Fees              decimal.Decimal     `json:"fees"`
	Insurance         decimal.Decimal     `json:"insurance"`
	Total             decimal.NullDecimal `json:"total"`
	RemainingBalance  decimal.Decimal     `json:"remaining_balance"`
	Status            InstallmentStatus   `json:"status"`
}

// IsPayable reports whether a payment may be attempted
func (i *Installment) IsPayable() bool {
	return i.Status == InstallmentStatusPending
}

// PaymentAmount is the amount charged for the installment: total, then principal, then zero
func (i *Installment) PaymentAmount() decimal.Decimal {
	if i.Total.Valid {
		return i.Total.Decimal
	}
	if i.PrincipalAmount.Valid {
		return i.PrincipalAmount.Decimal
	}
	return decimal.Zero
}

// TotalOrZero returns the total, treating an absent value as zero
func (i *Installment) TotalOrZero() decimal.Decimal {
	if i.Total.Valid {
		return i.Total.Decimal
	}
	return decimal.Zero
}

// PrincipalOrZero returns the principal, treating an absent value as zero
func (i *Installment) PrincipalOrZero() decimal.Decimal {
	if i.PrincipalAmount.Valid {
		return i.PrincipalAmount.Decimal
	}
	return decimal.Zero
}

type InstallmentPage struct {
	LoanID       string         `json:"loan_id"`
	Installments []*Installment `json:"installments"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
	TotalItems   int            `json:"total_items"`
	Message      string         `json:"message,omitempty"`
}
