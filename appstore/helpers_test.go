package appstore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testLogger creates a logger with no output for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCredentials generates an ephemeral P-256 key pair for signing tests.
func testCredentials(t *testing.T) *Credentials {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return &Credentials{
		KeyID:      "TESTKEY123",
		IssuerID:   "issuer-uuid-1234",
		PrivateKey: key,
	}
}

// newTestClient creates a client pointed at a fake API server, with retries
// configured for fast tests and sleeps recorded instead of performed.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&ClientConfig{
		BaseURL:     srv.URL,
		Credentials: testCredentials(t),
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   time.Minute,
		},
		HTTPClient: srv.Client(),
		Log:        testLogger(),
	})
	require.NoError(t, err)

	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return client, &slept
}
