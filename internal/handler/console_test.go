package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/internal/logger"
	"github.com/segyhp/loan-console/internal/mocks"
	customError "github.com/segyhp/loan-console/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(service *mocks.MockConsoleService) *mux.Router {
	log := logger.Discard()
	return NewRouter(NewConsoleHandler(service, log), NewHealthHandler(nil, nil, time.Second), log)
}

func serve(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestConsoleHandler_ApproveLoan(t *testing.T) {
	service := &mocks.MockConsoleService{}
	service.On("ApproveLoan", mock.Anything, "7").Return(&domain.ApproveLoanResponse{
		LoanID: "7",
		Status: domain.LoanStatusApproved,
	}, nil)

	rec, env := serve(t, newTestRouter(service), http.MethodPatch, "/api/v1/loans/7/approve", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "APROBADO")
	service.AssertExpectations(t)
}

func TestConsoleHandler_GenerateSchedule(t *testing.T) {
	service := &mocks.MockConsoleService{}
	service.On("GenerateSchedule", mock.Anything, "42").Return(&domain.GenerateScheduleResponse{ClientID: "42"}, nil)

	rec, _ := serve(t, newTestRouter(service), http.MethodPost, "/api/v1/clients/42/schedule", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestConsoleHandler_ListInstallments(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		expectedPage int
	}{
		{name: "explicit page", target: "/api/v1/loans/7/installments?page=2", expectedPage: 2},
		{name: "no page", target: "/api/v1/loans/7/installments", expectedPage: 1},
		{name: "garbage page", target: "/api/v1/loans/7/installments?page=abc", expectedPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockConsoleService{}
			service.On("ListInstallments", mock.Anything, "7", tt.expectedPage).
				Return(&domain.InstallmentPage{LoanID: "7", Page: tt.expectedPage}, nil).Once()

			rec, _ := serve(t, newTestRouter(service), http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			service.AssertExpectations(t)
		})
	}
}

func TestConsoleHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "invalid id", err: customError.WrapInvalidID("loan id"), expectedStatus: http.StatusBadRequest, expectedMsg: "loan id must not be empty"},
		{name: "not found", err: customError.WrapInstallmentNotFound("7", "1"), expectedStatus: http.StatusNotFound},
		{name: "backend", err: customError.WrapBackendError("loan already approved", "fallback", errors.New("400")), expectedStatus: http.StatusBadGateway, expectedMsg: "loan already approved"},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockConsoleService{}
			service.On("ApproveLoan", mock.Anything, "7").Return(nil, tt.err)

			rec, env := serve(t, newTestRouter(service), http.MethodPatch, "/api/v1/loans/7/approve", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.False(t, env.Success)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, env.Message)
			}
		})
	}
}

func TestConsoleHandler_PayInstallment(t *testing.T) {
	tests := []struct {
		name           string
		outcome        *domain.PaymentOutcome
		expectedStatus int
		expectSuccess  bool
	}{
		{name: "success", outcome: domain.PaymentSucceeded("key-1"), expectedStatus: http.StatusOK, expectSuccess: true},
		{name: "precondition", outcome: domain.PaymentFailed(domain.PaymentStagePrecondition, domain.MessageReferenceRequired), expectedStatus: http.StatusUnprocessableEntity},
		{name: "ledger post", outcome: domain.PaymentFailed(domain.PaymentStageLedgerPost, "insufficient funds"), expectedStatus: http.StatusBadGateway},
		{name: "schedule update", outcome: domain.PaymentFailed(domain.PaymentStageScheduleUpdate, "timeout"), expectedStatus: http.StatusBadGateway},
		{name: "already paid", outcome: domain.PaymentFailed(domain.PaymentStageAlreadyPaid, "cuota ya pagada"), expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockConsoleService{}
			service.On("PayInstallment", mock.Anything, "7", "1", &domain.PayInstallmentRequest{
				PaymentMethod: domain.PaymentMethodCash,
				Reference:     "REF1",
			}).Return(&domain.PayInstallmentResponse{
				LoanID:        "7",
				InstallmentID: "1",
				Outcome:       tt.outcome,
				Notice:        tt.outcome.OperatorNotice(),
				Retryable:     tt.outcome.Retryable(),
			}, nil).Once()

			rec, env := serve(t, newTestRouter(service), http.MethodPost, "/api/v1/loans/7/installments/1/payments",
				`{"payment_method":"CASH","reference":"REF1"}`)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectSuccess, env.Success)

			var result domain.PayInstallmentResponse
			require.NoError(t, json.Unmarshal(env.Data, &result))
			assert.Equal(t, tt.outcome.Stage, result.Outcome.Stage)
			assert.Equal(t, tt.outcome.Retryable(), result.Retryable)
			if !tt.expectSuccess {
				assert.Equal(t, tt.outcome.OperatorNotice(), env.Message)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestConsoleHandler_PayInstallmentBadInput(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "malformed body", body: `{"payment_method":`, expectedStatus: http.StatusBadRequest},
		{name: "missing method", body: `{"reference":"REF1"}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "unknown method", body: `{"payment_method":"CHEQUE","reference":"REF1"}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockConsoleService{}

			rec, env := serve(t, newTestRouter(service), http.MethodPost, "/api/v1/loans/7/installments/1/payments", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.False(t, env.Success)
			service.AssertNotCalled(t, "PayInstallment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestConsoleHandler_PrintReport(t *testing.T) {
	t.Run("renders html", func(t *testing.T) {
		service := &mocks.MockConsoleService{}
		service.On("Report", mock.Anything, "7").Return(&domain.ReportResponse{
			LoanID:      "7",
			GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Summary:     domain.ReportSummary{Count: 1, PendingCount: 1, TotalDue: decimal.NewFromInt(150)},
			Installments: []*domain.Installment{{
				ID:                "1",
				InstallmentNumber: 1,
				Total:             decimal.NewNullDecimal(decimal.NewFromInt(150)),
				Status:            domain.InstallmentStatusPending,
			}},
		}, nil)

		rec, _ := serve(t, newTestRouter(service), http.MethodGet, "/api/v1/loans/7/report/print", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "S/ 150.00")
	})

	t.Run("nothing to print", func(t *testing.T) {
		service := &mocks.MockConsoleService{}
		service.On("Report", mock.Anything, "7").Return(&domain.ReportResponse{LoanID: "7", Installments: []*domain.Installment{}}, nil)

		rec, _ := serve(t, newTestRouter(service), http.MethodGet, "/api/v1/loans/7/report/print", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, OutcomeStatus(domain.PaymentSucceeded("k")))
	assert.Equal(t, http.StatusUnprocessableEntity, OutcomeStatus(domain.PaymentFailed(domain.PaymentStagePrecondition, "")))
	assert.Equal(t, http.StatusConflict, OutcomeStatus(domain.PaymentFailed(domain.PaymentStageAlreadyPaid, "")))
	assert.Equal(t, http.StatusBadGateway, OutcomeStatus(domain.PaymentFailed(domain.PaymentStageLedgerPost, "")))
}

func TestHealthHandler_WithoutStores(t *testing.T) {
	router := newTestRouter(&mocks.MockConsoleService{})

	for _, target := range []string{"/health", "/health/ready"} {
		rec, env := serve(t, router, http.MethodGet, target, "")

		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.True(t, env.Success, target)
	}
}

func TestRouter_PreflightIsAnswered(t *testing.T) {
	rec, _ := serve(t, newTestRouter(&mocks.MockConsoleService{}), http.MethodOptions, "/api/v1/loans/7/installments/1/payments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
