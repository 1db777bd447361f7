package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// expiryBuffer is subtracted from a cached token's lifetime before reuse.
// A token expiring within the buffer is treated as already expired so it
// cannot lapse mid-request.
const expiryBuffer = 5 * time.Minute

// jwtBearerGrant is the grant_type for service-account token exchange.
const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// cachedToken is an access token with its absolute expiry instant.
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// usable reports whether the token is still safe to attach to a request.
func (t cachedToken) usable(now time.Time) bool {
	return t.accessToken != "" && now.Before(t.expiresAt.Add(-expiryBuffer))
}

// TokenSource exchanges signed assertions for access tokens and caches
// the current token for its lifetime. It is owned by the composition
// root and injected into the listing client; construct one per process.
//
// The cache is mutex-guarded: refresh is idempotent (concurrent
// refreshes each yield a valid token, last write wins) but the token
// fields must still be read and replaced atomically.
type TokenSource struct {
	signer     *Signer
	tokenURL   string
	httpClient *http.Client
	logger     *slog.Logger

	// now is the clock; tests inject a fake.
	now func() time.Time

	mu  sync.Mutex
	tok cachedToken
}

// NewTokenSource creates a TokenSource backed by the given signer.
// tokenURL defaults to DefaultTokenURL; httpClient to http.DefaultClient.
func NewTokenSource(signer *Signer, tokenURL string, httpClient *http.Client, logger *slog.Logger) *TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TokenSource{
		signer:     signer,
		tokenURL:   tokenURL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns a valid access token, reusing the cached one while its
// expiry is more than five minutes away and exchanging a fresh assertion
// otherwise. A non-2xx exchange response is fatal for the current
// request; retry is the caller's responsibility per call.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.tok.usable(now) {
		return s.tok.accessToken, nil
	}

	tok, err := s.exchange(ctx, now)
	if err != nil {
		return "", err
	}

	s.tok = tok

	s.logger.Debug("access token refreshed",
		slog.Time("expires_at", tok.expiresAt),
	)

	return tok.accessToken, nil
}

// Invalidate clears the cached token unconditionally. The listing client
// calls this after an authentication failure so the retry obtains a
// fresh token.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tok = cachedToken{}
}

// tokenResponse mirrors the token endpoint's JSON response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// exchange signs a fresh assertion and POSTs it as a JWT-bearer grant.
func (s *TokenSource) exchange(ctx context.Context, now time.Time) (cachedToken, error) {
	assertion, err := s.signer.Assertion(now)
	if err != nil {
		return cachedToken{}, err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return cachedToken{}, fmt.Errorf("auth: creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return cachedToken{}, fmt.Errorf("auth: token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)

		return cachedToken{}, fmt.Errorf("auth: token exchange failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return cachedToken{}, fmt.Errorf("auth: decoding token response: %w", err)
	}

	if tr.AccessToken == "" {
		return cachedToken{}, fmt.Errorf("auth: token response missing access_token")
	}

	return cachedToken{
		accessToken: tr.AccessToken,
		expiresAt:   now.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
