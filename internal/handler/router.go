package handler

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/pkg/response"
)

// NewRouter wires the console API and health routes
func NewRouter(console *ConsoleHandler, health *HealthHandler, log logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(log))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", health.Health).Methods("GET")
	router.HandleFunc("/health/ready", health.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans/{loanId}/approve", console.ApproveLoan).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/clients/{clientId}/schedule", console.GenerateSchedule).Methods("POST", "OPTIONS")
	api.HandleFunc("/loans/{loanId}/installments", console.ListInstallments).Methods("GET")
	api.HandleFunc("/loans/{loanId}/installments/{installmentId}/payments", console.PayInstallment).Methods("POST", "OPTIONS")
	api.HandleFunc("/loans/{loanId}/report", console.Report).Methods("GET")
	api.HandleFunc("/loans/{loanId}/report/print", console.PrintReport).Methods("GET")

	return router
}
