package transport

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// RateLimitedTransport honours 429 Retry-After responses from the Jira API, up to a fixed number of waits per request
type RateLimitedTransport struct {
	base     http.RoundTripper
	maxWaits int
}

// WithRateLimiting wraps base. With maxWaits 0 every response, including a 429, is returned to the caller as-is
func WithRateLimiting(base http.RoundTripper, maxWaits int) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RateLimitedTransport{base: base, maxWaits: maxWaits}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.maxWaits <= 0 {
		return t.base.RoundTrip(req)
	}

	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for waits := 0; ; waits++ {
		// Each attempt gets its own copy of the request and body; the caller's request is not modified
		attempt := req.Clone(req.Context())
		if bodyBytes != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(attempt)
		if err != nil {
			return resp, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || waits >= t.maxWaits {
			return resp, nil
		}

		waitDuration := retryAfter(resp.Header.Get("retry-after"))
		if waitDuration <= 0 {
			return resp, nil
		}

		// Close the response body to free resources
		err = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close response body: %w", err)
		}

		log.Printf("Rate limited by Jira, waiting %s", waitDuration)
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(waitDuration):
		}
	}
}

// retryAfter parses a Retry-After header given either in seconds or as an HTTP date
func retryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if retryTime, err := time.Parse(time.RFC1123, value); err == nil {
		return time.Until(retryTime)
	}
	return 0
}
