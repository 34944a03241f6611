package errors

import (
	"encoding/json"
	"fmt"
)

// ClassifyHTTPError determines whether an HTTP error should be retried:
// 4xx client errors (except 408/429) are irrecoverable, 5xx server errors and
// network-level errors are recoverable.
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:   getHTTPErrorCategory(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

// getHTTPErrorCategory maps HTTP status codes to error categories.
func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408: // Request Timeout - can retry
			return Recoverable
		case 429: // Too Many Requests - should retry with backoff
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes - be conservative and retry.
		return Recoverable
	}
}

// NewHTTPError creates a classified error for HTTP failures. The body is
// parsed for the backend's {"detail": ...} / {"message": ...} shape so
// callers see the server's own description when one was sent.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	detail := ExtractDetail(body)
	var underlyingErr error
	if detail != "" {
		underlyingErr = fmt.Errorf("%s failed: %s (HTTP %d)", operation, detail, statusCode)
	} else {
		underlyingErr = fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	}
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		StatusCode: 0,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// ExtractDetail pulls the human-readable message out of a backend error body.
// The API is inconsistent about the field name, so both are tried.
func ExtractDetail(body string) string {
	if body == "" {
		return ""
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
