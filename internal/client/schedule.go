package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/domain"
)

type scheduleClient struct {
	http *httpClient
}

func NewScheduleClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) ScheduleClient {
	return &scheduleClient{http: newHTTPClient("schedule", baseURL, timeout, log)}
}

func (c *scheduleClient) Generate(ctx context.Context, clientID string) error {
	return c.http.do(ctx, request{
		method: http.MethodPost,
		path:   "/cronogramas-pagos/generar/" + url.PathEscape(clientID),
	}, nil)
}

func (c *scheduleClient) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	var rows []cuota
	err := c.http.do(ctx, request{
		method: http.MethodGet,
		path:   "/cronogramas-pagos/prestamo-cliente/" + url.PathEscape(loanID),
	}, &rows)
	if err != nil {
		return nil, err
	}

	installments := make([]*domain.Installment, 0, len(rows))
	for _, row := range rows {
		inst, err := row.toDomain(loanID)
		if err != nil {
			return nil, fmt.Errorf("schedule: installment %s: %w", row.ID, err)
		}
		installments = append(installments, inst)
	}
	return installments, nil
}

func (c *scheduleClient) RegisterPayment(ctx context.Context, registration domain.PaymentRegistration) error {
	return c.http.do(ctx, request{
		method: http.MethodPost,
		path:   "/pagos-prestamos/registrar",
		query: url.Values{
			"idCuota":    {registration.InstallmentID},
			"tipoPago":   {string(registration.Method)},
			"referencia": {registration.Reference},
		},
		idempotencyKey: registration.IdempotencyKey,
	}, nil)
}

// cuota is an installment as the schedule service serializes it
type cuota struct {
	ID              flexID              `json:"id"`
	NumeroCuota     int                 `json:"numeroCuota"`
	FechaProgramada string              `json:"fechaProgramada"`
	MontoCuota      decimal.NullDecimal `json:"montoCuota"`
	Interes         decimal.NullDecimal `json:"interes"`
	Comisiones      decimal.NullDecimal `json:"comisiones"`
	Seguros         decimal.NullDecimal `json:"seguros"`
	Total           decimal.NullDecimal `json:"total"`
	SaldoPendiente  decimal.NullDecimal `json:"saldoPendiente"`
	Estado          string              `json:"estado"`
}

func (c cuota) toDomain(loanID string) (*domain.Installment, error) {
	status, err := domain.ParseInstallmentStatus(c.Estado)
	if err != nil {
		return nil, err
	}
	date, err := parseScheduleDate(c.FechaProgramada)
	if err != nil {
		return nil, err
	}
	return &domain.Installment{
		ID:                string(c.ID),
		LoanID:            loanID,
		InstallmentNumber: c.NumeroCuota,
		ScheduledDate:     date,
		PrincipalAmount:   c.MontoCuota,
		Interest:          orZero(c.Interes),
		Fees:              orZero(c.Comisiones),
		Insurance:         orZero(c.Seguros),
		Total:             c.Total,
		RemainingBalance:  orZero(c.SaldoPendiente),
		Status:            status,
	}, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

var scheduleDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseScheduleDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range scheduleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized scheduled date %q", s)
}

// flexID accepts identifiers serialized either as JSON numbers or strings
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}
