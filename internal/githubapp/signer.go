// Package githubapp implements the credential lifecycle for acting as a
// GitHub App: short-lived signed app assertions, per-repository installation
// id resolution, and cached installation access tokens.
package githubapp

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/termlink/issuemirror/internal/logging"
)

// assertionTTL is the lifetime of an app assertion. GitHub rejects
// assertions valid for more than ten minutes.
const assertionTTL = 10 * time.Minute

// AppIdentity holds the long-lived credentials identifying the GitHub App
// itself. It is loaded once at process start and never mutated.
type AppIdentity struct {
	AppID      string
	PrivateKey *rsa.PrivateKey
}

// NewAppIdentity loads the app's RSA private key from a PEM file. Malformed
// or unreadable key material is a startup error: without it the process
// cannot authenticate at all.
func NewAppIdentity(appID, privateKeyPath string) (*AppIdentity, error) {
	if appID == "" {
		return nil, fmt.Errorf("github app id is required")
	}
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file %s: %w", privateKeyPath, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key file %s: %w", privateKeyPath, err)
	}
	logging.Info("loaded github app private key",
		"app_id", appID,
		"key_file", privateKeyPath,
		"key_bytes", len(keyBytes))
	return &AppIdentity{AppID: appID, PrivateKey: key}, nil
}

// SignedAssertion is a short-lived JWT proving the identity of the app
// itself, not any specific installation. Assertions are generated fresh on
// every use and never cached.
type SignedAssertion struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer produces signed app assertions.
type Signer struct {
	identity *AppIdentity
	now      func() time.Time
}

// NewSigner creates a Signer for the given app identity.
func NewSigner(identity *AppIdentity) *Signer {
	return &Signer{identity: identity, now: time.Now}
}

// Sign builds and signs an assertion with issuer set to the app id and an
// expiry ten minutes out (GitHub's enforced ceiling).
func (s *Signer) Sign() (SignedAssertion, error) {
	now := s.now()
	expiresAt := now.Add(assertionTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    s.identity.AppID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.identity.PrivateKey)
	if err != nil {
		return SignedAssertion{}, fmt.Errorf("failed to sign app assertion: %w", err)
	}
	return SignedAssertion{Token: signed, IssuedAt: now, ExpiresAt: expiresAt}, nil
}
