package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// MovementType is the ledger transaction type, in the ledger's own spelling
type MovementType string

const (
	MovementTypeDeposit  MovementType = "DEPOSITO"
	MovementTypeTransfer MovementType = "TRANSFERENCIA"
)

// CardMovementType is how card payments are posted to the ledger.
// Card payments are currently booked as deposits, same as cash.
const CardMovementType = MovementTypeDeposit

func (t MovementType) IsValid() bool {
	return t == MovementTypeDeposit || t == MovementTypeTransfer
}

// PaymentStage identifies where a payment attempt failed
type PaymentStage string

const (
	PaymentStagePrecondition   PaymentStage = "PRECONDITION"
	PaymentStageLedgerPost     PaymentStage = "LEDGER_POST"
	PaymentStageScheduleUpdate PaymentStage = "SCHEDULE_UPDATE"
	PaymentStageAlreadyPaid    PaymentStage = "ALREADY_PAID"
)

const (
	MessageNotPayable        = "installment already paid or unavailable"
	MessageReferenceRequired = "reference required"
	MessageChargedNotSaved   = "payment was charged but not recorded, contact support"
)

// PaymentOutcome is the result of a single payment attempt
type PaymentOutcome struct {
	Success        bool         `json:"success"`
	Stage          PaymentStage `json:"stage,omitempty"`
	Message        string       `json:"message,omitempty"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
}

func PaymentSucceeded(idempotencyKey string) *PaymentOutcome {
	return &PaymentOutcome{Success: true, IdempotencyKey: idempotencyKey}
}

func PaymentFailed(stage PaymentStage, message string) *PaymentOutcome {
	return &PaymentOutcome{Stage: stage, Message: message}
}

// Retryable reports whether the operator may safely repeat the whole attempt.
// Once the ledger movement went through a retry could charge twice.
func (o *PaymentOutcome) Retryable() bool {
	switch o.Stage {
	case PaymentStagePrecondition, PaymentStageLedgerPost:
		return true
	}
	return false
}

// OperatorNotice is the text shown to the operator
func (o *PaymentOutcome) OperatorNotice() string {
	switch {
	case o.Success:
		return "payment registered"
	case o.Stage == PaymentStageScheduleUpdate:
		return MessageChargedNotSaved
	case o.Stage == PaymentStageAlreadyPaid:
		return "installment was already paid; the ledger movement needs review, contact support"
	default:
		return o.Message
	}
}

// LedgerMovement is a monetary movement posted to the core-banking ledger
type LedgerMovement struct {
	OriginAccount  string
	Type           MovementType
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

// PaymentRegistration marks an installment as paid on the schedule side
type PaymentRegistration struct {
	InstallmentID  string
	Method         PaymentMethod
	Reference      string
	IdempotencyKey string
}

// PayInstallmentRequest is the console payload for paying an installment
type PayInstallmentRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=CASH TRANSFER CARD"`
	Reference     string        `json:"reference"`
}

type PayInstallmentResponse struct {
	LoanID        string          `json:"loan_id"`
	InstallmentID string          `json:"installment_id"`
	Outcome       *PaymentOutcome `json:"outcome"`
	Notice        string          `json:"notice"`
	Retryable     bool            `json:"retryable"`
}

const (
	JournalStatusLedgerPosted = "LEDGER_POSTED"
	JournalStatusRecorded     = "RECORDED"
	JournalStatusResolved     = "RESOLVED"
	JournalStatusStuck        = "STUCK"
	// the schedule service answered and refused to register the payment
	JournalStatusRejected = "REJECTED"
	// charged, but the installment was settled by another payment; refund review
	JournalStatusDuplicate = "DUPLICATE"
)

// OpenJournalStatuses are the statuses the reconciler still has to look at
var OpenJournalStatuses = []string{JournalStatusLedgerPosted, JournalStatusRejected, JournalStatusStuck}

// JournalEntry tracks a payment attempt whose ledger movement went through
type JournalEntry struct {
	ID             string          `json:"id" db:"id"`
	IdempotencyKey string          `json:"idempotency_key" db:"idempotency_key"`
	LoanID         string          `json:"loan_id" db:"loan_id"`
	InstallmentID  string          `json:"installment_id" db:"installment_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	Reference      string          `json:"reference" db:"reference"`
	Status         string          `json:"status" db:"status"`
	LastError      string          `json:"last_error" db:"last_error"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the entry still needs reconciliation
func (e *JournalEntry) IsOpen() bool {
	for _, status := range OpenJournalStatuses {
		if e.Status == status {
			return true
		}
	}
	return false
}
