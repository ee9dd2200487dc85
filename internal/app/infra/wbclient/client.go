package wbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wbhub/internal/app/pkg/errorx"
	"wbhub/internal/app/pkg/logger"
)

const (
	defaultBaseURL = "https://marketplace-api.wildberries.ru/api/v3"
	maxAttempts    = 3
	retryBackoff   = 2 * time.Second
)

// Client is the retrying HTTP transport for the marketplace API. One instance
// serves every account; the token is resolved per request.
type Client struct {
	baseURL    string
	tokens     map[string]string
	httpClient *http.Client
	logger     logger.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the marketplace base URL (tests point it at a fake).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates the marketplace transport over the account → token map.
func NewClient(tokens map[string]string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is a structured marketplace error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("marketplace api error %s: %s", e.Code, e.Message)
}

// do performs one request with per-account auth and bounded retries on
// transport failures and 429/5xx. The response body is decoded into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, account, method, path string, query map[string]string, body, out interface{}) error {
	token, ok := c.tokens[account]
	if !ok {
		return errorx.ErrAccountTokenMissing
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/json")
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warnf(ctx, "marketplace request failed (attempt %d/%d): %s %s: %v",
				attempt, maxAttempts, method, path, err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil && len(data) > 0 {
				if err := json.Unmarshal(data, out); err != nil {
					return fmt.Errorf("decode marketplace response: %w", err)
				}
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("marketplace status %d: %s", resp.StatusCode, truncate(data, 256))
			c.logger.Warnf(ctx, "marketplace retryable status %d (attempt %d/%d): %s %s",
				resp.StatusCode, attempt, maxAttempts, method, path)
			continue
		default:
			// 4xx other than 429 carries a business-level rejection; do not retry.
			var ae apiError
			if err := json.Unmarshal(data, &ae); err == nil && (ae.Code != "" || ae.Message != "") {
				return &ae
			}
			return fmt.Errorf("marketplace status %d: %s", resp.StatusCode, truncate(data, 256))
		}
	}

	return errorx.NewRemote(fmt.Sprintf("marketplace unavailable after %d attempts: %s %s", maxAttempts, method, path), lastErr)
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		return string(data[:n]) + "..."
	}
	return string(data)
}
