package github

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// MaxJWTDuration is the longest lifetime GitHub accepts for an App JWT.
const MaxJWTDuration = 10 * time.Minute

// clockSkew backdates iat so a runner clock slightly ahead of GitHub's is accepted.
const clockSkew = 60 * time.Second

// AppSigner signs JWTs that authenticate as a GitHub App.
type AppSigner struct {
	appID      int64
	privateKey *rsa.PrivateKey
	nowFunc    func() time.Time
}

// NewAppSigner creates a signer for the App with the given ID and PEM-encoded RSA key.
func NewAppSigner(appID int64, privateKeyPEM []byte) (*AppSigner, error) {
	if appID <= 0 {
		return nil, fmt.Errorf("app ID must be positive")
	}

	privateKey, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &AppSigner{
		appID:      appID,
		privateKey: privateKey,
		nowFunc:    time.Now,
	}, nil
}

// Sign returns an RS256 JWT valid for the given duration, at most MaxJWTDuration.
func (s *AppSigner) Sign(duration time.Duration) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("duration must be positive")
	}
	if duration > MaxJWTDuration {
		return "", fmt.Errorf("duration %v exceeds maximum allowed %v", duration, MaxJWTDuration)
	}

	now := s.nowFunc()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(s.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-clockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// parsePrivateKey accepts PKCS#1 ("RSA PRIVATE KEY") and PKCS#8 ("PRIVATE KEY") PEM blocks.
func parsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}

	return rsaKey, nil
}
