package ingestion

import "fmt"

// FetchError reports a failed website fetch. StatusCode is zero when the
// failure happened before a response arrived.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch failed for %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch failed for %s: HTTP status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
