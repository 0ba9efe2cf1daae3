package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/client"
	"github.com/segyhp/loan-console/internal/domain"
	customError "github.com/segyhp/loan-console/pkg/errors"
	"github.com/segyhp/loan-console/pkg/utils"
)

// Fallback texts when a backend gives no message
const (
	fallbackApproveMessage  = "error approving the loan"
	fallbackGenerateMessage = "error generating the installments"
	fallbackListMessage     = "error fetching the installments"
)

// ConsoleService backs the console screens
type ConsoleService struct {
	loans       client.LoanClient
	schedule    client.ScheduleClient
	coordinator *PaymentCoordinator
	pageSize    int
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewConsoleService(
	loans client.LoanClient,
	schedule client.ScheduleClient,
	coordinator *PaymentCoordinator,
	pageSize int,
	log logrus.FieldLogger,
) *ConsoleService {
	return &ConsoleService{
		loans:       loans,
		schedule:    schedule,
		coordinator: coordinator,
		pageSize:    pageSize,
		log:         log,
		now:         time.Now,
	}
}

// ApproveLoan marks a client loan as approved
func (s *ConsoleService) ApproveLoan(ctx context.Context, loanID string) (*domain.ApproveLoanResponse, error) {
	loanID = strings.TrimSpace(loanID)
	if loanID == "" {
		return nil, customError.WrapInvalidID("loan id")
	}

	if err := s.loans.Approve(ctx, loanID); err != nil {
		return nil, backendError(err, fallbackApproveMessage)
	}

	s.log.WithField("loan_id", loanID).Info("loan approved")
	return &domain.ApproveLoanResponse{
		LoanID:  loanID,
		Status:  domain.LoanStatusApproved,
		Message: "loan approved",
	}, nil
}

// GenerateSchedule asks the schedule service to build a client's installments
func (s *ConsoleService) GenerateSchedule(ctx context.Context, clientID string) (*domain.GenerateScheduleResponse, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, customError.WrapInvalidID("client id")
	}

	if err := s.schedule.Generate(ctx, clientID); err != nil {
		return nil, backendError(err, fallbackGenerateMessage)
	}

	s.log.WithField("client_id", clientID).Info("installment schedule generated")
	return &domain.GenerateScheduleResponse{
		ClientID: clientID,
		Message:  "installments generated",
	}, nil
}

// GetSchedule returns every installment of a loan
func (s *ConsoleService) GetSchedule(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	loanID = strings.TrimSpace(loanID)
	if loanID == "" {
		return nil, customError.WrapInvalidID("loan id")
	}

	installments, err := s.schedule.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, backendError(err, fallbackListMessage)
	}
	return installments, nil
}

// ListInstallments returns one page of a loan's installments
func (s *ConsoleService) ListInstallments(ctx context.Context, loanID string, page int) (*domain.InstallmentPage, error) {
	installments, err := s.GetSchedule(ctx, loanID)
	if err != nil {
		return nil, err
	}

	p := utils.Paginate(len(installments), page, s.pageSize)
	result := &domain.InstallmentPage{
		LoanID:       strings.TrimSpace(loanID),
		Installments: installments[p.Start:p.End],
		Page:         p.Page,
		PageSize:     s.pageSize,
		TotalPages:   p.TotalPages,
		TotalItems:   len(installments),
	}
	if len(installments) == 0 {
		result.Message = "no installments found for this loan"
	}
	return result, nil
}

// PayInstallment re-reads the installment from the schedule service and pays it.
// A nil error means the outcome describes what happened, successful or not.
func (s *ConsoleService) PayInstallment(
	ctx context.Context,
	loanID, installmentID string,
	request *domain.PayInstallmentRequest,
) (*domain.PayInstallmentResponse, error) {
	installmentID = strings.TrimSpace(installmentID)
	if installmentID == "" {
		return nil, customError.WrapInvalidID("installment id")
	}
	if request == nil {
		return nil, customError.WrapInvalidRequest(errors.New("missing payment details"))
	}

	installments, err := s.GetSchedule(ctx, loanID)
	if err != nil {
		return nil, err
	}

	var target *domain.Installment
	for _, inst := range installments {
		if inst != nil && inst.ID == installmentID {
			target = inst
			break
		}
	}
	if target == nil {
		return nil, customError.WrapInstallmentNotFound(strings.TrimSpace(loanID), installmentID)
	}

	outcome := s.coordinator.PayInstallment(ctx, target, request.PaymentMethod, request.Reference)
	return &domain.PayInstallmentResponse{
		LoanID:        target.LoanID,
		InstallmentID: target.ID,
		Outcome:       outcome,
		Notice:        outcome.OperatorNotice(),
		Retryable:     outcome.Retryable(),
	}, nil
}

// Report loads a loan's installments and summarizes them
func (s *ConsoleService) Report(ctx context.Context, loanID string) (*domain.ReportResponse, error) {
	installments, err := s.GetSchedule(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return AssembleReport(strings.TrimSpace(loanID), installments, s.now()), nil
}

func backendError(err error, fallback string) error {
	var bErr *customError.BusinessError
	if errors.As(err, &bErr) {
		return err
	}
	return customError.WrapBackendError(client.Message(err, ""), fallback, err)
}
