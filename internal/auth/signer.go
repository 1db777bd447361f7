// Package auth implements service-account authentication against the
// content store: it signs short-lived JWT assertions with the account's
// RSA private key and exchanges them for bearer access tokens, caching
// the current token until shortly before expiry.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token endpoint and scope for the read-only content API.
const (
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	ReadOnlyScope   = "https://www.googleapis.com/auth/drive.readonly"
)

// assertionLifetime is the validity window claimed in the signed
// assertion. One hour is the maximum the token endpoint accepts.
const assertionLifetime = time.Hour

// ErrBadCredentials indicates malformed key material or incomplete
// credentials. This is a configuration problem: fatal for the current
// attempt and never retried.
var ErrBadCredentials = errors.New("auth: bad credentials")

// Credentials identifies a service account. PrivateKey is PEM-encoded;
// both literal-newline and "\n"-escaped forms are accepted.
type Credentials struct {
	ClientEmail  string
	PrivateKey   string
	PrivateKeyID string
}

// Signer produces signed bearer-token assertions for a service account.
// The key is parsed once at construction so malformed key material fails
// fast rather than on first use.
type Signer struct {
	creds Credentials
	key   *rsa.PrivateKey
	scope string
	aud   string
}

// NewSigner parses the credential's private key and returns a Signer.
// scope and audience default to the read-only content scope and the
// standard token endpoint when empty.
func NewSigner(creds Credentials, scope, audience string) (*Signer, error) {
	if creds.ClientEmail == "" || creds.PrivateKey == "" || creds.PrivateKeyID == "" {
		return nil, fmt.Errorf("%w: missing client email, key, or key ID", ErrBadCredentials)
	}

	if scope == "" {
		scope = ReadOnlyScope
	}

	if audience == "" {
		audience = DefaultTokenURL
	}

	pemKey := strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing private key: %v", ErrBadCredentials, err)
	}

	return &Signer{creds: creds, key: key, scope: scope, aud: audience}, nil
}

// Assertion builds and signs the JWT-bearer assertion as of now:
// RS256, kid header, claims {iss, scope, aud, iat, exp = iat + 1h}.
func (s *Signer) Assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.creds.ClientEmail,
		"scope": s.scope,
		"aud":   s.aud,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = s.creds.PrivateKeyID

	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing assertion: %w", err)
	}

	return signed, nil
}
