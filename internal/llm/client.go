// Package llm provides a resilient client for a remote language-model
// endpoint that returns structured JSON constrained by a strict schema.
//
// The client retries transient failures (network errors, rate limits, and —
// when enabled — server errors) with exponential backoff honoring the
// server's retry-after hint, and classifies everything else into the typed
// errors in errors.go. Backoff sleeps block only the calling goroutine.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// errorCodeQuotaExceeded is the machine-readable 429 code that signals quota
// exhaustion rather than transient rate limiting. Retrying it wastes budget.
const errorCodeQuotaExceeded = "insufficient_quota"

// Config holds per-client settings. Each agent constructs its own client so
// temperature and the 5xx retry behavior can differ per agent.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxRetries  int
	BaseBackoff time.Duration
	Timeout     time.Duration

	// RetryServerErrors enables backoff retries on HTTP 5xx. Only the
	// verifier's client sets this; the extractor and drafter treat 5xx as
	// immediately fatal. The asymmetry is intentional.
	RetryServerErrors bool
}

// Client executes structured-output requests against the remote endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// sleep is swappable in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// New creates a client. A missing API key is a ConfigurationError: fatal,
// surfaced before any request is made.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Missing: "OPENAI_API_KEY"}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      time.Sleep,
	}, nil
}

// CreateStructured sends one logical "produce JSON matching this schema"
// request and returns the extracted, still-unvalidated JSON object.
func (c *Client) CreateStructured(ctx context.Context, input []Message, format Format) (map[string]any, error) {
	body, err := json.Marshal(request{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Input:       input,
		Text:        textDirective{Format: format},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastTransport error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.post(ctx, body)
		if err != nil {
			lastTransport = err
			if attempt < c.cfg.MaxRetries {
				wait := c.backoff(attempt)
				log.Printf("llm: network error, retrying in %v (attempt %d/%d) err=%v",
					wait, attempt+1, c.cfg.MaxRetries+1, err)
				c.sleep(wait)
				continue
			}
			return nil, &TransportError{Cause: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastTransport = readErr
			if attempt < c.cfg.MaxRetries {
				wait := c.backoff(attempt)
				log.Printf("llm: read error, retrying in %v (attempt %d/%d) err=%v",
					wait, attempt+1, c.cfg.MaxRetries+1, readErr)
				c.sleep(wait)
				continue
			}
			return nil, &TransportError{Cause: readErr}
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			message, code := errorDetails(resp.StatusCode, respBody)
			if code == errorCodeQuotaExceeded {
				return nil, &QuotaExceededError{RateLimitError{Message: message}}
			}
			if attempt < c.cfg.MaxRetries {
				wait := c.backoff(attempt)
				if hint := retryAfterSeconds(resp.Header); hint > wait {
					wait = hint
				}
				log.Printf("llm: rate limited, retrying in %v (attempt %d/%d)",
					wait, attempt+1, c.cfg.MaxRetries+1)
				c.sleep(wait)
				continue
			}
			return nil, &RateLimitError{Message: message}

		case resp.StatusCode >= 500:
			if c.cfg.RetryServerErrors && attempt < c.cfg.MaxRetries {
				wait := c.backoff(attempt)
				log.Printf("llm: server error %d, retrying in %v (attempt %d/%d)",
					resp.StatusCode, wait, attempt+1, c.cfg.MaxRetries+1)
				c.sleep(wait)
				continue
			}
			message, _ := errorDetails(resp.StatusCode, respBody)
			return nil, &RemoteServiceError{StatusCode: resp.StatusCode, Message: message}

		case resp.StatusCode >= 400:
			message, _ := errorDetails(resp.StatusCode, respBody)
			return nil, &RemoteServiceError{StatusCode: resp.StatusCode, Message: message}
		}

		parsed, err := ExtractOutput(respBody)
		if err != nil {
			return nil, &RemoteServiceError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("invalid structured payload: %v", err),
			}
		}
		return parsed, nil
	}

	return nil, &TransportError{Cause: lastTransport}
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// backoff returns the exponential wait before the retry following attempt
// (0-indexed): base * 2^attempt.
func (c *Client) backoff(attempt int) time.Duration {
	return c.cfg.BaseBackoff * time.Duration(1<<attempt)
}

// errorDetails parses the remote error body {error:{message, code}}. Falls
// back to a generic "HTTP <code>" message when the body is unusable.
func errorDetails(statusCode int, body []byte) (message, code string) {
	fallback := fmt.Sprintf("API error: HTTP %d", statusCode)

	var payload struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback, ""
	}
	if strings.TrimSpace(payload.Error.Message) == "" {
		return fallback, payload.Error.Code
	}
	return "API error: " + payload.Error.Message, payload.Error.Code
}

// retryAfterSeconds reads the retry-after header (seconds, possibly
// fractional). Returns 0 when absent or malformed.
func retryAfterSeconds(h http.Header) time.Duration {
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
