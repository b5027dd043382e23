package appstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// tokenAudience is the fixed audience claim required by the API.
	tokenAudience = "appstoreconnect-v1"

	// tokenValidity is the maximum token lifetime the remote service allows.
	tokenValidity = 20 * time.Minute

	// tokenRefreshMargin is how close to expiry a cached token may get
	// before a fresh one is signed instead.
	tokenRefreshMargin = time.Minute
)

// Token is a short-lived signed credential authorizing API calls.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSource issues and caches signed API tokens. A single token is cached
// and reused until it comes within tokenRefreshMargin of expiry. Refresh is
// a critical section so concurrent callers never sign redundantly.
type TokenSource struct {
	creds *Credentials
	now   func() time.Time

	mu     sync.Mutex
	cached Token
}

// NewTokenSource creates a token source for the given credentials.
func NewTokenSource(creds *Credentials) *TokenSource {
	return &TokenSource{
		creds: creds,
		now:   time.Now,
	}
}

// Token returns a token valid for at least tokenRefreshMargin. The cached
// token is returned unchanged when it qualifies; otherwise a new one is
// signed with ES256 and cached.
func (ts *TokenSource) Token() (Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now().UTC()
	if ts.cached.Value != "" && now.Before(ts.cached.ExpiresAt.Add(-tokenRefreshMargin)) {
		return ts.cached, nil
	}

	issued := now
	expires := now.Add(tokenValidity)

	claims := &jwt.RegisteredClaims{
		Issuer:    ts.creds.IssuerID,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = ts.creds.KeyID

	signed, err := token.SignedString(ts.creds.PrivateKey)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign API token: %w", err)
	}

	ts.cached = Token{
		Value:     signed,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}
	return ts.cached, nil
}

// Invalidate discards the cached token so the next call signs a fresh one.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.cached = Token{}
}
