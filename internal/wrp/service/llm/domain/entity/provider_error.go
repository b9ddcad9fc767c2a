package entity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureReason classifies why a chat request against a backend failed.
type FailureReason int32

const (
	// FailureReason_Unknown is the zero value for unclassified errors.
	FailureReason_Unknown FailureReason = 0

	// FailureReason_Auth indicates authentication failure (HTTP 401/403).
	FailureReason_Auth FailureReason = 1

	// FailureReason_RateLimit indicates rate limiting (HTTP 429).
	FailureReason_RateLimit FailureReason = 2

	// FailureReason_Billing indicates billing or quota issues (HTTP 402).
	FailureReason_Billing FailureReason = 3

	// FailureReason_Timeout indicates a request or process timeout.
	FailureReason_Timeout FailureReason = 4

	// FailureReason_Format indicates a rejected request (HTTP 400, invalid params).
	FailureReason_Format FailureReason = 5

	// FailureReason_Unavailable indicates the backend is temporarily unavailable (HTTP 503).
	FailureReason_Unavailable FailureReason = 6

	// FailureReason_ServerError indicates a backend-side failure (HTTP 500/502/504).
	FailureReason_ServerError FailureReason = 7
)

func (r FailureReason) String() string {
	switch r {
	case FailureReason_Unknown:
		return "unknown"
	case FailureReason_Auth:
		return "auth"
	case FailureReason_RateLimit:
		return "rate_limit"
	case FailureReason_Billing:
		return "billing"
	case FailureReason_Timeout:
		return "timeout"
	case FailureReason_Format:
		return "format"
	case FailureReason_Unavailable:
		return "unavailable"
	case FailureReason_ServerError:
		return "server_error"
	default:
		return fmt.Sprintf("FailureReason(%d)", r)
	}
}

// IsRetryable returns whether repeating the same request might succeed.
func (r FailureReason) IsRetryable() bool {
	switch r {
	case FailureReason_RateLimit, FailureReason_Timeout,
		FailureReason_Unavailable, FailureReason_ServerError:
		return true
	default:
		return false
	}
}

// HTTPStatusCode returns the canonical HTTP status code for this reason.
func (r FailureReason) HTTPStatusCode() int {
	switch r {
	case FailureReason_Auth:
		return http.StatusUnauthorized
	case FailureReason_RateLimit:
		return http.StatusTooManyRequests
	case FailureReason_Billing:
		return http.StatusPaymentRequired
	case FailureReason_Timeout:
		return http.StatusRequestTimeout
	case FailureReason_Format:
		return http.StatusBadRequest
	case FailureReason_Unavailable:
		return http.StatusServiceUnavailable
	case FailureReason_ServerError:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

// ProviderCallError is returned by every ChatProvider when the backend call
// fails. Error() yields the backend's own error text so it can be shown to the
// user verbatim; the classification travels alongside it.
type ProviderCallError struct {
	Reason   FailureReason `json:"reason"`
	Provider string        `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`

	// StatusCode is the HTTP status from the backend, if one was available.
	StatusCode int    `json:"status_code,omitempty"`
	Code       string `json:"code,omitempty"`

	// Message is the raw backend error text.
	Message string `json:"message"`

	Cause error `json:"-"`
}

func (e *ProviderCallError) Error() string {
	return e.Message
}

func (e *ProviderCallError) Unwrap() error {
	return e.Cause
}

// Is matches another ProviderCallError carrying only a Reason.
func (e *ProviderCallError) Is(target error) bool {
	t, ok := target.(*ProviderCallError)
	if !ok {
		return false
	}
	if t.Provider == "" && t.Model == "" && t.Message == "" {
		return e.Reason == t.Reason
	}
	return false
}

// Detail renders the error with its classification, for logs.
func (e *ProviderCallError) Detail() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s]", e.Reason))
	if e.Provider != "" || e.Model != "" {
		sb.WriteString(fmt.Sprintf(" %s/%s:", e.Provider, e.Model))
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(" (HTTP %d)", e.StatusCode))
	}
	if e.Code != "" {
		sb.WriteString(fmt.Sprintf(" [code=%s]", e.Code))
	}
	return sb.String()
}

// NewProviderCallError builds an error for a failure with no underlying cause.
func NewProviderCallError(reason FailureReason, provider, model, message string) *ProviderCallError {
	return &ProviderCallError{
		Reason:     reason,
		Provider:   provider,
		Model:      model,
		StatusCode: reason.HTTPStatusCode(),
		Message:    message,
	}
}

// WrapProviderError classifies err and wraps it. An existing
// ProviderCallError is enriched with provider/model and returned as is.
func WrapProviderError(err error, provider, model string) *ProviderCallError {
	if err == nil {
		return nil
	}

	var pe *ProviderCallError
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			pe.Provider = provider
		}
		if pe.Model == "" {
			pe.Model = model
		}
		return pe
	}

	return &ProviderCallError{
		Reason:     ClassifyError(err),
		Provider:   provider,
		Model:      model,
		StatusCode: extractStatusCode(err),
		Code:       extractErrorCode(err),
		Message:    err.Error(),
		Cause:      err,
	}
}

// ClassifyError determines the FailureReason of a raw error: context errors
// first, then HTTP status, error code and finally message patterns.
func ClassifyError(err error) FailureReason {
	if err == nil {
		return FailureReason_Unknown
	}

	var pe *ProviderCallError
	if errors.As(err, &pe) {
		return pe.Reason
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureReason_Timeout
	}

	if status := extractStatusCode(err); status != 0 {
		if reason := classifyFromStatus(status); reason != FailureReason_Unknown {
			return reason
		}
	}

	if code := extractErrorCode(err); code != "" {
		if reason := classifyFromCode(code); reason != FailureReason_Unknown {
			return reason
		}
	}

	return classifyFromMessage(err.Error())
}

func classifyFromStatus(status int) FailureReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailureReason_Auth
	case status == http.StatusPaymentRequired:
		return FailureReason_Billing
	case status == http.StatusTooManyRequests:
		return FailureReason_RateLimit
	case status == http.StatusRequestTimeout:
		return FailureReason_Timeout
	case status == http.StatusBadRequest:
		return FailureReason_Format
	case status == http.StatusServiceUnavailable:
		return FailureReason_Unavailable
	case status == http.StatusInternalServerError ||
		status == http.StatusBadGateway ||
		status == http.StatusGatewayTimeout:
		return FailureReason_ServerError
	default:
		return FailureReason_Unknown
	}
}

func classifyFromCode(code string) FailureReason {
	switch strings.ToUpper(code) {
	case "ETIMEDOUT", "ESOCKETTIMEDOUT", "ECONNRESET", "ECONNABORTED":
		return FailureReason_Timeout
	case "ECONNREFUSED":
		return FailureReason_Unavailable
	default:
		return FailureReason_Unknown
	}
}

var messagePatterns = []struct {
	reason   FailureReason
	patterns []string
}{
	{FailureReason_Timeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{FailureReason_RateLimit, []string{"rate limit", "rate_limit", "ratelimit", "too many requests", "quota exceeded", "throttl"}},
	{FailureReason_Auth, []string{"unauthorized", "authentication", "invalid api key", "invalid_api_key", "invalid x-api-key", "forbidden", "access denied"}},
	{FailureReason_Billing, []string{"billing", "payment", "insufficient_quota", "insufficient funds", "credit"}},
	{FailureReason_Unavailable, []string{"unavailable", "overloaded", "connection refused", "executable file not found"}},
	{FailureReason_ServerError, []string{"internal server error", "internal error", "bad gateway"}},
}

func classifyFromMessage(msg string) FailureReason {
	lower := strings.ToLower(msg)
	for _, group := range messagePatterns {
		for _, p := range group.patterns {
			if strings.Contains(lower, p) {
				return group.reason
			}
		}
	}
	return FailureReason_Unknown
}

type statusCodeCarrier interface {
	StatusCode() int
}

type statusCarrier interface {
	Status() int
}

func extractStatusCode(err error) int {
	var sc statusCodeCarrier
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	var s statusCarrier
	if errors.As(err, &s) {
		return s.Status()
	}
	return 0
}

type errorCodeCarrier interface {
	ErrorCode() string
}

func extractErrorCode(err error) string {
	var c errorCodeCarrier
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}
