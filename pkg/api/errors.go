package api

import "fmt"

// ValidationError indicates the caller supplied arguments that violate a
// precondition. It is always returned before any network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthenticationError indicates the API rejected the credentials or none
// were supplied. Never retried.
type AuthenticationError struct {
	Msg string
}

func (e *AuthenticationError) Error() string { return e.Msg }

// RateLimitError indicates retries were exhausted against HTTP 429 responses.
type RateLimitError struct {
	Retries int
	Body    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts", e.Retries)
}

// APIError covers server errors after retries, unexpected status codes,
// transport failures and data conversion failures. StatusCode is zero when
// the failure happened below the HTTP layer.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "api request failed"
}

func (e *APIError) Unwrap() error { return e.Err }
