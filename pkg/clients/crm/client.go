package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"contact-relay/pkg/models"
)

var ErrMissingEndpoint = errors.New("CRM endpoint is not configured")

// StatusError is returned when the CRM answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error from CRM API: status %d: %s", e.StatusCode, e.Body)
}

// Client defines the interface for interacting with the CRM API
type Client interface {
	CreateContact(ctx context.Context, payload models.RelayPayload) ([]byte, error)
}

type clientImpl struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*clientImpl)

// WithHTTPClient replaces the default HTTP client. A nil client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every CRM request. The HTTP client passed with WithHTTPClient
// is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *clientImpl) {
		c.timeout = d
	}
}

// NewClient creates a new CRM client posting to endpoint
func NewClient(endpoint string, opts ...Option) Client {
	c := &clientImpl{endpoint: endpoint}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// CreateContact posts payload as JSON and returns the raw response body.
func (c *clientImpl) CreateContact(ctx context.Context, payload models.RelayPayload) ([]byte, error) {
	if c.endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error creating CRM contact: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
