// Package api provides the typed service calls the front-end pages consume.
// Every request flows through the session transport, so credential injection
// and expiry handling come for free; the services here only shape payloads
// and classify backend failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/brochaworks/go-session"
	goerrors "github.com/goliatone/go-errors"
)

// Client is the shared HTTP surface for the typed services.
type Client struct {
	baseURL string
	http    *http.Client
	logger  session.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the Client logger.
func WithLogger(l session.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an API client. Pass the *http.Client from the wired session so
// requests carry the credential and react to expiry.
func New(baseURL string, httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  noopLogger{},
	}
	if c.http == nil {
		c.http = &http.Client{}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Users returns the user administration service.
func (c *Client) Users() *UsersService { return &UsersService{c: c} }

// Payroll returns the weekly payroll service.
func (c *Client) Payroll() *PayrollService { return &PayrollService{c: c} }

// Assignments returns the work-assignment service.
func (c *Client) Assignments() *AssignmentsService { return &AssignmentsService{c: c} }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode response")
	}
	return nil
}

// backendError maps a non-2xx response to a rich error, surfacing the
// backend's own message when it supplied one.
func backendError(status int, body []byte) error {
	msg := ""
	var blob map[string]any
	if err := json.Unmarshal(body, &blob); err == nil {
		if m, ok := blob["msg"].(string); ok {
			msg = m
		} else if m, ok := blob["message"].(string); ok {
			msg = m
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var rich *goerrors.Error
	switch status {
	case http.StatusUnauthorized:
		rich = goerrors.New(msg, goerrors.CategoryAuth).WithCode(goerrors.CodeUnauthorized)
	case http.StatusForbidden:
		rich = goerrors.New(msg, goerrors.CategoryAuthz).WithCode(goerrors.CodeForbidden)
	case http.StatusNotFound:
		rich = goerrors.New(msg, goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	case http.StatusBadRequest:
		rich = goerrors.New(msg, goerrors.CategoryBadInput).WithCode(goerrors.CodeBadRequest)
	default:
		rich = goerrors.New(msg, goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}

	return rich.WithMetadata(map[string]any{"status": status})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
