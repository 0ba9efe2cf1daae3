// Package client talks to the remote loan-servicing and core-banking services.
//
// Every call goes through a single http.Client with a finite timeout; non-2xx
// answers become a *RemoteError carrying the backend's {message} text.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const idempotencyHeader = "Idempotency-Key"

var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflicting state")
	ErrBackend  = errors.New("backend request failed")
)

// RemoteError is a non-2xx answer from a backend
type RemoteError struct {
	Service    string
	StatusCode int
	Message    string
	kind       error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.kind
}

// Message extracts the operator-facing text of err: the backend's message when
// there is one, the fallback otherwise.
func Message(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}

func newRemoteError(service string, status int, body []byte) *RemoteError {
	kind := ErrBackend
	switch status {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusConflict:
		kind = ErrConflict
	}

	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	return &RemoteError{
		Service:    service,
		StatusCode: status,
		Message:    strings.TrimSpace(payload.Message),
		kind:       kind,
	}
}

// httpClient is the shared plumbing behind the typed clients
type httpClient struct {
	service string
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

func newHTTPClient(service, baseURL string, timeout time.Duration, log logrus.FieldLogger) *httpClient {
	return &httpClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.WithField("backend", service),
	}
}

type request struct {
	method         string
	path           string
	query          url.Values
	body           interface{}
	idempotencyKey string
}

// do sends the request and decodes a 2xx body into out when out is not nil
func (c *httpClient) do(ctx context.Context, r request, out interface{}) error {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.service, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, r.idempotencyKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", r.path).Warn("backend request failed")
		return fmt.Errorf("%s: %w: %v", c.service, ErrBackend, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.service, err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   r.method,
		"path":     r.path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newRemoteError(c.service, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.service, err)
	}
	return nil
}
