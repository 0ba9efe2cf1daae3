package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/client"
	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/internal/repository"
	customError "github.com/segyhp/loan-console/pkg/errors"
)

const (
	fallbackLedgerMessage   = "error posting the ledger movement"
	fallbackScheduleMessage = "error registering the payment"
)

// PaymentCoordinator registers one installment payment across the ledger and
// the schedule service. It holds no installment state between calls.
type PaymentCoordinator struct {
	ledger           client.LedgerClient
	schedule         client.ScheduleClient
	journal          repository.JournalRepository
	lock             repository.PaymentLock
	originAccount    string
	cardMovementType domain.MovementType
	log              logrus.FieldLogger
	newKey           func() string
}

// PaymentCoordinatorOption configures a PaymentCoordinator
type PaymentCoordinatorOption func(*PaymentCoordinator)

// WithJournal records ledger movements for later reconciliation
func WithJournal(journal repository.JournalRepository) PaymentCoordinatorOption {
	return func(c *PaymentCoordinator) { c.journal = journal }
}

// WithLock guards each installment against concurrent attempts
func WithLock(lock repository.PaymentLock) PaymentCoordinatorOption {
	return func(c *PaymentCoordinator) { c.lock = lock }
}

// WithCardMovementType overrides how card payments are posted to the ledger
func WithCardMovementType(t domain.MovementType) PaymentCoordinatorOption {
	return func(c *PaymentCoordinator) { c.cardMovementType = t }
}

// WithLogger sets the logger used for payment attempts
func WithLogger(log logrus.FieldLogger) PaymentCoordinatorOption {
	return func(c *PaymentCoordinator) { c.log = log }
}

// NewPaymentCoordinator builds a coordinator without journal or lock unless options add them
func NewPaymentCoordinator(
	ledger client.LedgerClient,
	schedule client.ScheduleClient,
	originAccount string,
	opts ...PaymentCoordinatorOption,
) *PaymentCoordinator {
	c := &PaymentCoordinator{
		ledger:           ledger,
		schedule:         schedule,
		journal:          repository.NewNoopJournalRepository(),
		lock:             repository.NewNoopPaymentLock(),
		originAccount:    originAccount,
		cardMovementType: domain.CardMovementType,
		log:              logrus.StandardLogger(),
		newKey:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MovementTypeFor maps a payment method to the ledger movement type
func (c *PaymentCoordinator) MovementTypeFor(method domain.PaymentMethod) (domain.MovementType, bool) {
	switch method {
	case domain.PaymentMethodCash:
		return domain.MovementTypeDeposit, true
	case domain.PaymentMethodTransfer:
		return domain.MovementTypeTransfer, true
	case domain.PaymentMethodCard:
		return c.cardMovementType, true
	}
	return "", false
}

// PayInstallment posts the ledger movement and then registers the payment on
// the schedule. The schedule call is only made after the ledger accepted the
// movement, and a failed schedule call is never compensated.
func (c *PaymentCoordinator) PayInstallment(
	ctx context.Context,
	installment *domain.Installment,
	method domain.PaymentMethod,
	reference string,
) *domain.PaymentOutcome {
	if installment == nil || !installment.IsPayable() {
		return domain.PaymentFailed(domain.PaymentStagePrecondition, domain.MessageNotPayable)
	}

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.PaymentFailed(domain.PaymentStagePrecondition, domain.MessageReferenceRequired)
	}

	movementType, ok := c.MovementTypeFor(method)
	if !ok {
		return domain.PaymentFailed(domain.PaymentStagePrecondition, fmt.Sprintf("unsupported payment method %q", method))
	}

	log := c.log.WithFields(logrus.Fields{
		"installment_id": installment.ID,
		"loan_id":        installment.LoanID,
		"payment_method": method,
	})

	release, acquired, err := c.lock.Acquire(ctx, installment.ID)
	if err != nil {
		log.WithError(customError.WrapCacheError(err)).Error("payment lock unavailable")
		return domain.PaymentFailed(domain.PaymentStagePrecondition, "could not reserve the installment for payment, try again")
	}
	if !acquired {
		return domain.PaymentFailed(domain.PaymentStagePrecondition, "a payment for this installment is already in progress")
	}
	defer release()

	open, err := c.journal.HasOpenEntry(ctx, installment.ID)
	if err != nil {
		log.WithError(customError.WrapDatabaseError(err)).Error("journal lookup failed")
		return domain.PaymentFailed(domain.PaymentStagePrecondition, "could not check previous payment attempts, try again")
	}
	if open {
		return domain.PaymentFailed(domain.PaymentStagePrecondition, "a previous payment for this installment is awaiting reconciliation")
	}

	key := c.newKey()
	amount := installment.PaymentAmount()
	log = log.WithField("idempotency_key", key)

	err = c.ledger.PostMovement(ctx, domain.LedgerMovement{
		OriginAccount:  c.originAccount,
		Type:           movementType,
		Amount:         amount,
		Description:    PaymentDescription(installment.InstallmentNumber, method),
		IdempotencyKey: key,
	})
	if err != nil {
		log.WithError(err).Warn("ledger movement rejected")
		return domain.PaymentFailed(domain.PaymentStageLedgerPost, client.Message(err, fallbackLedgerMessage))
	}

	c.recordLedgerPosted(ctx, log, key, installment, method, reference)

	err = c.schedule.RegisterPayment(ctx, domain.PaymentRegistration{
		InstallmentID:  installment.ID,
		Method:         method,
		Reference:      reference,
		IdempotencyKey: key,
	})
	if err != nil {
		message := client.Message(err, fallbackScheduleMessage)
		// a refusal from the schedule service means this attempt never landed
		// there, so a PAID installment seen later belongs to another payment
		status := domain.JournalStatusLedgerPosted
		var remote *client.RemoteError
		if errors.As(err, &remote) {
			status = domain.JournalStatusRejected
		}
		if errors.Is(err, client.ErrConflict) {
			log.WithError(err).Error("installment already paid after ledger movement")
			c.updateJournal(ctx, log, key, status, message)
			return domain.PaymentFailed(domain.PaymentStageAlreadyPaid, message)
		}
		log.WithError(err).Error("ledger movement posted but schedule not updated")
		c.updateJournal(ctx, log, key, status, message)
		return domain.PaymentFailed(domain.PaymentStageScheduleUpdate, message)
	}

	c.updateJournal(ctx, log, key, domain.JournalStatusRecorded, "")
	log.WithField("amount", amount.StringFixed(2)).Info("installment payment registered")
	return domain.PaymentSucceeded(key)
}

// journal failures never change the outcome; the money already moved
func (c *PaymentCoordinator) recordLedgerPosted(
	ctx context.Context,
	log logrus.FieldLogger,
	key string,
	installment *domain.Installment,
	method domain.PaymentMethod,
	reference string,
) {
	entry := &domain.JournalEntry{
		ID:             uuid.NewString(),
		IdempotencyKey: key,
		LoanID:         installment.LoanID,
		InstallmentID:  installment.ID,
		Amount:         installment.PaymentAmount(),
		PaymentMethod:  string(method),
		Reference:      reference,
	}
	if err := c.journal.RecordLedgerPosted(ctx, entry); err != nil {
		log.WithError(customError.WrapDatabaseError(err)).Error("failed to journal ledger movement")
	}
}

func (c *PaymentCoordinator) updateJournal(ctx context.Context, log logrus.FieldLogger, key, status, lastError string) {
	if err := c.journal.UpdateStatus(ctx, key, status, lastError); err != nil {
		log.WithError(err).WithField("status", status).Error("failed to update payment journal")
	}
}

// PaymentDescription is the ledger description of an installment payment
func PaymentDescription(installmentNumber int, method domain.PaymentMethod) string {
	return fmt.Sprintf("Pago cuota #%d - %s", installmentNumber, method)
}
