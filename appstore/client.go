package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.appstoreconnect.apple.com/v1"

	// requestTimeout bounds each individual HTTP attempt.
	requestTimeout = 30 * time.Second
)

// RetryConfig controls the pipeline's retry and backoff behavior.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns the standard retry parameters.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL overrides the production endpoint, mainly for tests.
	BaseURL string

	// Credentials are required; they feed the token source.
	Credentials *Credentials

	// Retry defaults to DefaultRetryConfig when zero.
	Retry RetryConfig

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	// Log is required.
	Log *slog.Logger
}

// Client is the single choke point for outbound API calls. It injects
// authentication, bounds every attempt with a timeout, classifies failures,
// and retries with exponential backoff. No other component issues calls
// directly.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenSource
	retry   RetryConfig
	log     *slog.Logger

	// sleep is replaced in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an API client from the given configuration.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.Credentials == nil {
		return nil, &CredentialError{Reason: "no credentials configured"}
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("no logger configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.BaseDelay == 0 && retry.MaxDelay == 0 {
		retry = DefaultRetryConfig()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		tokens:  NewTokenSource(cfg.Credentials),
		retry:   retry,
		log:     cfg.Log,
		sleep:   sleepContext,
	}, nil
}

// Execute performs an authenticated API call, decoding the response body
// into out when out is non-nil. A fresh token validity check happens on
// every attempt. Terminal failures are returned as *APIError enriched with
// the status code and parsed error body.
func (c *Client) Execute(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr *APIError
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		token, err := c.tokens.Token()
		if err != nil {
			return err
		}

		apiErr := c.attempt(ctx, method, endpoint, payload, token.Value, out)
		if apiErr == nil {
			return nil
		}
		lastErr = apiErr

		if !apiErr.Retryable() || attempt == c.retry.MaxRetries {
			break
		}

		delay := backoffDelay(c.retry, attempt, apiErr.backoffMultiplier())
		c.log.Warn("API request failed, retrying",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Int("status", apiErr.Status),
			slog.String("kind", apiErr.Kind.String()),
			slog.Duration("delay", delay))

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// attempt issues one HTTP request and classifies the result.
func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, token string, out any) *APIError {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &APIError{Kind: KindTransient, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransient, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return &APIError{Kind: KindTransient, Status: resp.StatusCode, Detail: "undecodable response body", Err: err}
			}
		}
		return nil
	}

	return classifyStatus(resp.StatusCode, respBody)
}

// backoffDelay computes min(base * 2^attempt * multiplier, max). The
// rate-limit path passes multiplier 2; everything else passes 1.
func backoffDelay(cfg RetryConfig, attempt, multiplier int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(multiplier) * time.Duration(1<<uint(attempt))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
