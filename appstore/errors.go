package appstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CredentialError indicates missing or invalid key material. It is fatal:
// no retry, surfaced before any network call is attempted.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("credential error: %s", e.Reason)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an API failure and determines retry behavior.
type ErrorKind int

const (
	// KindTransient covers retryable 4xx/5xx responses and network faults.
	KindTransient ErrorKind = iota

	// KindAuth covers 401/403. Credentials are not transient; no retry.
	KindAuth

	// KindNotFound covers 404 and zero-result lookups. No retry.
	KindNotFound

	// KindConflict covers 409. Association creation treats it as success.
	KindConflict

	// KindRateLimit covers 429, retried with amplified backoff.
	KindRateLimit
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "transient"
	}
}

// APIError is a classified failure of a single API operation, carrying the
// HTTP status and the remote error detail when available.
type APIError struct {
	Kind   ErrorKind
	Status int
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api request failed (%s): %v", e.Kind, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("api request failed (%s, status %d): %s", e.Kind, e.Status, e.Detail)
	default:
		return fmt.Sprintf("api request failed (%s, status %d)", e.Kind, e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the pipeline may retry after this error.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimit
}

// backoffMultiplier amplifies the delay schedule for rate-limit responses
// to respect external throttling more conservatively.
func (e *APIError) backoffMultiplier() int {
	if e.Kind == KindRateLimit {
		return 2
	}
	return 1
}

// errorResponse is the remote error envelope.
type errorResponse struct {
	Errors []struct {
		Status string `json:"status"`
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// classifyStatus builds an APIError for a non-2xx response. Classification
// is by status code only; error message text is not inspected.
func classifyStatus(status int, body []byte) *APIError {
	kind := KindTransient
	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 404:
		kind = KindNotFound
	case status == 409:
		kind = KindConflict
	case status == 429:
		kind = KindRateLimit
	}

	detail := ""
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		detail = parsed.Errors[0].Detail
		if detail == "" {
			detail = parsed.Errors[0].Title
		}
	}
	if detail == "" && len(body) > 0 {
		detail = string(body)
	}

	return &APIError{Kind: kind, Status: status, Detail: detail}
}

// IsNotFound reports whether err is a terminal not-found failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsAuth reports whether err is an authorization failure.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsConflict reports whether err is a 409 conflict.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindConflict
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimit
}
