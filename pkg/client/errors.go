package client

import "fmt"

// QuoteFetchError reports a failed quote request: the origin asset is
// unsupported, the service rejected the request, or the call itself failed.
type QuoteFetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *QuoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("quote fetch failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("quote fetch failed: %s", e.Message)
}

func (e *QuoteFetchError) Unwrap() error {
	return e.Err
}

// StatusFetchError reports a failed execution-status lookup. These are
// treated as transient by callers that poll.
type StatusFetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status fetch failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status fetch failed: %s", e.Message)
}

func (e *StatusFetchError) Unwrap() error {
	return e.Err
}
