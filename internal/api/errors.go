package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	// KindNone is returned for a nil error.
	KindNone ErrorKind = iota
	KindConfig
	KindAPI
	KindTimeout
	KindTransport
	KindParse
	// KindOther is any error not produced by the executor.
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfig:
		return "config"
	case KindAPI:
		return "api"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "other"
	}
}

// ConfigError reports a missing precondition. No request was sent.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// APIError is a response with a status outside [200,300).
// Body is the raw response body, never parsed.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// TimeoutError reports that no response arrived within Timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %dms", e.Timeout.Milliseconds())
}

// TransportError wraps a network failure below the HTTP layer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport error: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a successful status whose body is not valid JSON.
type ParseError struct {
	Body   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s. Raw: %s", e.Reason, e.Body)
}

// Kind returns the classification of err.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		cfgErr       *ConfigError
		apiErr       *APIError
		timeoutErr   *TimeoutError
		transportErr *TransportError
		parseErr     *ParseError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &parseErr):
		return KindParse
	default:
		return KindOther
	}
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
