package coinbase

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrNoWalletSecret indicates a signing call was made without a wallet secret.
	ErrNoWalletSecret = errors.New("coinbase: wallet secret required for signing")

	// ErrSignerMismatch indicates the remote signature does not belong to the account.
	ErrSignerMismatch = errors.New("coinbase: remote signature does not verify")
)

// Error classes.
const (
	ErrorTypeRateLimit   = "rate_limit"
	ErrorTypeServerError = "server_error"
	ErrorTypeAuthError   = "auth_error"
	ErrorTypeClientError = "client_error"
)

// APIError is a non-2xx response from the CDP API.
type APIError struct {
	StatusCode int
	ErrorType  string
	Message    string
	RequestID  string
	Method     string
	Path       string

	// Retryable is set for rate limits and server errors.
	Retryable  bool
	RetryAfter time.Duration
	Attempt    int
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("coinbase: api error [%d] %s: %s", e.StatusCode, e.ErrorType, e.Message)
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	if e.Method != "" {
		msg += fmt.Sprintf(" [%s %s]", e.Method, e.Path)
	}
	if e.Attempt > 0 {
		msg += fmt.Sprintf(" (attempt %d)", e.Attempt+1)
	}
	return msg
}

// IsRetryable reports whether err is an APIError worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable
}

func classify(status int, header http.Header, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		RequestID:  header.Get("X-Request-ID"),
		Message:    string(body),
	}

	switch {
	case status == http.StatusTooManyRequests:
		e.ErrorType, e.Retryable = ErrorTypeRateLimit, true
		e.RetryAfter = retryAfter(header.Get("Retry-After"))
	case status >= 500:
		e.ErrorType, e.Retryable = ErrorTypeServerError, true
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.ErrorType = ErrorTypeAuthError
	default:
		e.ErrorType = ErrorTypeClientError
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// retryAfter parses seconds or an HTTP date. Zero means no hint.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
