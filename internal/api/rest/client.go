// Package rest implements the api.Gateway over the service's JSON HTTP API.
//
// Each operation is a single attempt: no retries, no caching and no client
// side deadline beyond what the caller's context imposes.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"

	"spendwise/internal/api"
	"spendwise/internal/log"
)

// DefaultBaseURL is where the service listens in a local setup.
const DefaultBaseURL = "http://localhost:5000/api"

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Client talks to the remote expense service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  api.TokenSource
	logger  *log.Logger
}

var _ api.Gateway = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAPI) }
}

// New returns a client for baseURL. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens api.TokenSource, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = api.StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	fields := log.NewFields().
		WithRequestID(requestID).
		WithRequest(method, path, query.Encode()).
		WithOperation(op)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Request failed", fields.WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		return &api.Error{Kind: api.KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start).Milliseconds()
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	fields.WithResponse(resp.StatusCode, elapsed, ok)
	if err != nil {
		c.logger.WarnContext(ctx, "Reading response failed", fields.WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		return &api.Error{Kind: api.KindNetwork, Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if !ok {
		apiErr := &api.Error{
			Kind:       api.KindForStatus(resp.StatusCode),
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(raw),
		}
		c.logger.Log(ctx, levelFor(apiErr.Kind), "Request rejected", fields.WithErrorType(errorType(apiErr)).ToSlice()...)
		return apiErr
	}

	c.logger.DebugContext(ctx, "Request completed", fields.ToSlice()...)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &api.Error{Kind: api.KindServer, Op: op, StatusCode: resp.StatusCode, Message: "Unexpected response from server", Err: err}
	}
	return nil
}

// serverMessage pulls the human readable text out of an error body. The
// service uses either "error" or "message".
func serverMessage(raw []byte) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	for _, path := range []string{"$.error", "$.message"} {
		v, err := jsonpath.Get(path, doc)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func levelFor(k api.Kind) slog.Level {
	if k == api.KindServer {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func errorType(e *api.Error) string {
	switch {
	case e.NotFound():
		return log.ErrorTypeNotFound
	case e.Kind == api.KindAuth:
		return log.ErrorTypeAuth
	case e.Kind == api.KindValidation:
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeServer
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

// requireID rejects blank ids before they turn into a collection URL.
func requireID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return &api.Error{Kind: api.KindValidation, Op: op, Message: "id is required"}
	}
	return nil
}

var errEmptyToken = errors.New("server returned no token")
