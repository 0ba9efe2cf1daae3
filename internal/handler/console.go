package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/internal/report"
	customError "github.com/segyhp/loan-console/pkg/errors"
	"github.com/segyhp/loan-console/pkg/response"
	"github.com/segyhp/loan-console/pkg/utils"
)

// ConsoleService is what the console screens need from the service layer
type ConsoleService interface {
	ApproveLoan(ctx context.Context, loanID string) (*domain.ApproveLoanResponse, error)
	GenerateSchedule(ctx context.Context, clientID string) (*domain.GenerateScheduleResponse, error)
	ListInstallments(ctx context.Context, loanID string, page int) (*domain.InstallmentPage, error)
	PayInstallment(ctx context.Context, loanID, installmentID string, request *domain.PayInstallmentRequest) (*domain.PayInstallmentResponse, error)
	Report(ctx context.Context, loanID string) (*domain.ReportResponse, error)
}

type ConsoleHandler struct {
	service   ConsoleService
	validator *validator.Validate
	log       logrus.FieldLogger
}

func NewConsoleHandler(service ConsoleService, log logrus.FieldLogger) *ConsoleHandler {
	return &ConsoleHandler{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

// ApproveLoan handles PATCH /loans/{loanId}/approve
func (h *ConsoleHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ApproveLoan(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, result)
}

// GenerateSchedule handles POST /clients/{clientId}/schedule
func (h *ConsoleHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GenerateSchedule(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, result)
}

// ListInstallments handles GET /loans/{loanId}/installments
func (h *ConsoleHandler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r.URL.Query().Get("page"))

	result, err := h.service.ListInstallments(r.Context(), mux.Vars(r)["loanId"], page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, result)
}

// PayInstallment handles POST /loans/{loanId}/installments/{installmentId}/payments
func (h *ConsoleHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	var request domain.PayInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "request validation failed", err)
		return
	}

	vars := mux.Vars(r)
	result, err := h.service.PayInstallment(r.Context(), vars["loanId"], vars["installmentId"], &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := OutcomeStatus(result.Outcome)
	if result.Outcome.Success {
		response.JSON(w, status, result)
		return
	}
	response.Failure(w, status, result.Notice, result)
}

// Report handles GET /loans/{loanId}/report
func (h *ConsoleHandler) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Report(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, result)
}

// PrintReport handles GET /loans/{loanId}/report/print
func (h *ConsoleHandler) PrintReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Report(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(result.Installments) == 0 {
		response.NotFound(w, "load the loan's installments before printing the report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, result); err != nil {
		h.log.WithError(err).Error("failed to render printable report")
	}
}

// OutcomeStatus maps a payment outcome to the HTTP status of the console API
func OutcomeStatus(outcome *domain.PaymentOutcome) int {
	if outcome.Success {
		return http.StatusOK
	}
	switch outcome.Stage {
	case domain.PaymentStagePrecondition:
		return http.StatusUnprocessableEntity
	case domain.PaymentStageAlreadyPaid:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *ConsoleHandler) writeError(w http.ResponseWriter, err error) {
	var bErr *customError.BusinessError
	if !errors.As(err, &bErr) {
		h.log.WithError(err).Error("unexpected error")
		response.InternalServerError(w, "internal error", err)
		return
	}

	switch bErr.Code {
	case customError.ErrCodeInvalidID, customError.ErrCodeInvalidRequest:
		response.BadRequest(w, bErr.Message, bErr.Err)
	case customError.ErrCodeInstallmentNotFound:
		response.NotFound(w, bErr.Message)
	case customError.ErrCodeBackendError:
		h.log.WithError(bErr.Err).Warn("backend call failed")
		response.Error(w, http.StatusBadGateway, bErr.Message, bErr.Err)
	default:
		h.log.WithError(err).Error("request failed")
		response.InternalServerError(w, bErr.Message, bErr.Err)
	}
}
