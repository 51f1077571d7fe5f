package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v72/github"
)

// TokenRefreshBuffer is how long before expiry an installation token is replaced.
const TokenRefreshBuffer = 5 * time.Minute

// jwtLifetime is the lifetime of the JWT used for a single token exchange.
const jwtLifetime = 9 * time.Minute

// InstallationTokens issues GitHub App installation tokens and caches the current one
// until it is close to expiry.
type InstallationTokens struct {
	mu sync.RWMutex

	installationID int64
	signer         *AppSigner
	httpClient     *http.Client
	baseURL        string

	token     string
	expiresAt time.Time

	nowFunc func() time.Time
}

// InstallationOption configures InstallationTokens.
type InstallationOption func(*InstallationTokens)

// WithExchangeHTTPClient sets the HTTP client used for token exchange.
func WithExchangeHTTPClient(client *http.Client) InstallationOption {
	return func(it *InstallationTokens) {
		it.httpClient = client
	}
}

// WithExchangeBaseURL points token exchange at a GitHub Enterprise or test server.
func WithExchangeBaseURL(baseURL string) InstallationOption {
	return func(it *InstallationTokens) {
		it.baseURL = baseURL
	}
}

// WithNowFunc sets a custom time function for testing.
func WithNowFunc(fn func() time.Time) InstallationOption {
	return func(it *InstallationTokens) {
		it.nowFunc = fn
		it.signer.nowFunc = fn
	}
}

// NewInstallationTokens creates a token source for one App installation.
func NewInstallationTokens(appID, installationID int64, privateKeyPEM []byte, opts ...InstallationOption) (*InstallationTokens, error) {
	if installationID <= 0 {
		return nil, fmt.Errorf("installation ID must be positive")
	}
	if len(privateKeyPEM) == 0 {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	signer, err := NewAppSigner(appID, privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to create App signer: %w", err)
	}

	it := &InstallationTokens{
		installationID: installationID,
		signer:         signer,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		baseURL:        DefaultBaseURL,
		nowFunc:        time.Now,
	}

	for _, opt := range opts {
		opt(it)
	}

	return it, nil
}

// Token returns a valid installation token, exchanging a new one if necessary.
func (it *InstallationTokens) Token(ctx context.Context) (string, error) {
	it.mu.RLock()
	if it.isValidLocked() {
		token := it.token
		it.mu.RUnlock()
		return token, nil
	}
	it.mu.RUnlock()

	return it.Refresh(ctx)
}

// Refresh exchanges a fresh JWT for a new installation token.
func (it *InstallationTokens) Refresh(ctx context.Context) (string, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	signed, err := it.signer.Sign(jwtLifetime)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	base, err := url.Parse(it.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid GitHub API base URL %q: %w", it.baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client := gh.NewClient(it.httpClient).WithAuthToken(signed)
	client.BaseURL = base

	installToken, _, err := client.Apps.CreateInstallationToken(ctx, it.installationID, nil)
	if err != nil {
		return "", wrapAPIError("exchange installation token", err)
	}
	if installToken.GetToken() == "" {
		return "", fmt.Errorf("failed to exchange installation token: empty token in response")
	}

	it.token = installToken.GetToken()
	it.expiresAt = installToken.GetExpiresAt().Time

	return it.token, nil
}

// isValidLocked reports whether the cached token outlives the refresh buffer (must hold at least RLock).
func (it *InstallationTokens) isValidLocked() bool {
	if it.token == "" {
		return false
	}
	return it.expiresAt.After(it.nowFunc().Add(TokenRefreshBuffer))
}

// TokenTransport authenticates each request with a current installation token.
type TokenTransport struct {
	Tokens *InstallationTokens
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *TokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Tokens.Token(req.Context())
	if err != nil {
		return nil, err
	}

	// RoundTrippers must not modify the caller's request.
	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(authed)
}
