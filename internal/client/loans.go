package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/domain"
)

type loanClient struct {
	http *httpClient
}

func NewLoanClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) LoanClient {
	return &loanClient{http: newHTTPClient("loans", baseURL, timeout, log)}
}

func (c *loanClient) Approve(ctx context.Context, loanID string) error {
	return c.http.do(ctx, request{
		method: http.MethodPatch,
		path:   "/prestamos-clientes/" + url.PathEscape(loanID) + "/estado",
		query:  url.Values{"estado": {domain.LoanStatusApproved}},
	}, nil)
}
