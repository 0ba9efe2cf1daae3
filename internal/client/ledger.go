package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/domain"
)

type ledgerClient struct {
	http *httpClient
}

func NewLedgerClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) LedgerClient {
	return &ledgerClient{http: newHTTPClient("ledger", baseURL, timeout, log)}
}

// movementRequest is the body of the ledger's deposit endpoint
type movementRequest struct {
	NumeroCuentaOrigen string      `json:"numeroCuentaOrigen"`
	TipoTransaccion    string      `json:"tipoTransaccion"`
	Monto              json.Number `json:"monto"`
	Descripcion        string      `json:"descripcion"`
}

func (c *ledgerClient) PostMovement(ctx context.Context, movement domain.LedgerMovement) error {
	return c.http.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/transacciones/deposito",
		body: movementRequest{
			NumeroCuentaOrigen: movement.OriginAccount,
			TipoTransaccion:    string(movement.Type),
			Monto:              json.Number(movement.Amount.StringFixed(2)),
			Descripcion:        movement.Description,
		},
		idempotencyKey: movement.IdempotencyKey,
	}, nil)
}
