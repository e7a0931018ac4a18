package llm

import "fmt"

// ConfigurationError indicates a required credential or setting is absent.
// Fatal; surfaced immediately without contacting the remote service.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Missing)
}

// TransportError indicates a network or timeout failure reaching the remote
// endpoint, after retries were exhausted.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates a transient 429 that survived all configured retries.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// QuotaExceededError is the non-retryable 429 variant: the account's quota is
// exhausted, so retrying cannot succeed. Subtype of RateLimitError.
type QuotaExceededError struct {
	RateLimitError
}

// RemoteServiceError indicates any other >=400 response, or a 2xx response
// whose structured payload could not be located or parsed.
type RemoteServiceError struct {
	StatusCode int
	Message    string
}

func (e *RemoteServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: HTTP %d", e.StatusCode)
}
