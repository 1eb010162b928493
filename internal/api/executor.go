// Package api executes single JSON-over-HTTPS requests against the ClickUp API
// and classifies every outcome into a value or exactly one typed error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// DefaultBaseURL is the ClickUp API host (HTTPS, port 443).
	DefaultBaseURL = "https://api.clickup.com"

	// DefaultTimeout applies when a request does not set its own.
	DefaultTimeout = 30 * time.Second

	// PathPrefix is the version prefix every request path starts with.
	PathPrefix = "/api/v2/"
)

// Config configures an Executor. It is copied at construction.
type Config struct {
	// APIKey is sent verbatim in the Authorization header.
	APIKey string

	// BaseURL overrides DefaultBaseURL (tests point it at a local server).
	BaseURL string

	// Timeout is the default per-request timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport. Its own Timeout should be zero.
	HTTPClient *http.Client

	// AllowEmptyBody makes an empty 2xx body succeed with JSON null
	// instead of failing with a ParseError.
	AllowEmptyBody bool

	Logger *slog.Logger
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	// Body is encoded as JSON when non-nil.
	Body any
	// Timeout <= 0 uses the executor default.
	Timeout time.Duration
}

// Executor performs requests. It is safe for concurrent use.
type Executor struct {
	apiKey         string
	baseURL        string
	timeout        time.Duration
	http           *http.Client
	allowEmptyBody bool
	log            *slog.Logger
}

// New creates an Executor from cfg, filling in defaults.
func New(cfg Config) *Executor {
	e := &Executor{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		timeout:        cfg.Timeout,
		http:           cfg.HTTPClient,
		allowEmptyBody: cfg.AllowEmptyBody,
		log:            cfg.Logger,
	}
	if e.baseURL == "" {
		e.baseURL = DefaultBaseURL
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.http == nil {
		e.http = &http.Client{}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Do sends req and returns the parsed JSON body.
// A non-nil error is one of *ConfigError, *APIError, *TimeoutError,
// *TransportError or *ParseError.
func (e *Executor) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if e.apiKey == "" {
		return nil, &ConfigError{Msg: "CLICKUP_API_KEY environment variable not found"}
	}
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unsupported method: %s", req.Method)}
	}
	if !strings.HasPrefix(req.Path, PathPrefix) {
		return nil, &ConfigError{Msg: fmt.Sprintf("path must start with %s: %s", PathPrefix, req.Path)}
	}

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("encoding request body: %v", err)}
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, e.baseURL+req.Path, body)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("building request: %v", err)}
	}
	httpReq.Header.Set("Authorization", e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	id := ulid.Make().String()
	start := time.Now()
	e.log.Debug("api request", "id", id, "method", req.Method, "path", req.Path, "bytes", len(payload))

	resp, err := e.http.Do(httpReq)
	if err != nil {
		err = classify(ctx, reqCtx, timeout, err)
		e.log.Debug("api request failed", "id", id, "kind", Kind(err), "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = classify(ctx, reqCtx, timeout, err)
		e.log.Debug("api response read failed", "id", id, "kind", Kind(err), "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	e.log.Debug("api response", "id", id, "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return e.decode(raw)
}

// decode is the single policy point for 2xx bodies.
func (e *Executor) decode(raw []byte) (json.RawMessage, error) {
	if e.allowEmptyBody && len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ParseError{Body: string(raw), Reason: err.Error()}
	}
	return json.RawMessage(raw), nil
}

// classify maps a transport-level failure to a TimeoutError when our own
// deadline fired, and to a TransportError otherwise.
func classify(parent, reqCtx context.Context, timeout time.Duration, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout}
	}
	if parent.Err() != nil {
		return &TransportError{Err: parent.Err()}
	}
	return &TransportError{Err: err}
}
