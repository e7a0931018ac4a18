// Package ingestion fetches lead websites and extracts their visible text
// for the agent pipeline. Plain HTTP is the default path; a headless browser
// fallback handles JavaScript-rendered sites when enabled.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; OutreachAgent/1.0)"

	maxFetchAttempts  = 3
	fetchRetryBackoff = 250 * time.Millisecond
)

// Fetcher retrieves website text for snapshots. UseBrowser enables the
// headless-browser fallback for pages whose HTTP response carries too
// little text.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	useBrowser bool
	sleep      func(time.Duration)
}

// NewFetcher creates a fetcher with the default HTTP client.
func NewFetcher(useBrowser bool) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		useBrowser: useBrowser,
		sleep:      time.Sleep,
	}
}

// Snapshot fetches the URL and returns its extracted visible text. Network
// failures and 5xx responses are retried with a short linear backoff; 4xx
// responses fail immediately.
func (f *Fetcher) Snapshot(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FetchError{URL: rawURL, Cause: fmt.Errorf("invalid URL")}
	}

	html, err := f.fetchHTML(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(html)
	if err != nil {
		return "", &FetchError{URL: rawURL, Cause: err}
	}

	if f.useBrowser && shouldUseBrowser(text) {
		log.Printf("ingestion: thin HTTP content for %s (%d chars), rendering in browser", rawURL, len(text))
		rendered, err := renderWithBrowser(ctx, rawURL, defaultTimeout)
		if err != nil {
			log.Printf("ingestion: browser fallback failed for %s: %v", rawURL, err)
			return text, nil
		}
		if renderedText, err := ExtractText(rendered); err == nil && len(renderedText) > len(text) {
			text = renderedText
		}
	}

	return text, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			f.sleep(fetchRetryBackoff * time.Duration(attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", &FetchError{URL: rawURL, Cause: err}
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = &FetchError{URL: rawURL, Cause: err}
			log.Printf("ingestion: fetch attempt %d for %s failed: %v", attempt+1, rawURL, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
			log.Printf("ingestion: fetch attempt %d for %s returned %d", attempt+1, rawURL, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
		}
		if readErr != nil {
			lastErr = &FetchError{URL: rawURL, Cause: readErr}
			continue
		}

		return string(body), nil
	}
	return "", lastErr
}
