package githubapp

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppIdentity(t *testing.T) {
	key := newTestKey(t)
	keyPath := writeTestKeyPEM(t, key)

	identity, err := NewAppIdentity("12345", keyPath)
	require.NoError(t, err)
	assert.Equal(t, "12345", identity.AppID)
	assert.True(t, key.Equal(identity.PrivateKey))
}

func TestNewAppIdentityMissingAppID(t *testing.T) {
	keyPath := writeTestKeyPEM(t, newTestKey(t))

	_, err := NewAppIdentity("", keyPath)
	assert.Error(t, err)
}

func TestNewAppIdentityUnreadableKeyFile(t *testing.T) {
	_, err := NewAppIdentity("12345", "/nonexistent/app.pem")
	assert.Error(t, err)
}

func TestNewAppIdentityMalformedKey(t *testing.T) {
	path := writeTestKeyPEM(t, newTestKey(t))
	// Overwrite with garbage that is not PEM at all.
	require.NoError(t, overwriteFile(path, "not a pem file"))

	_, err := NewAppIdentity("12345", path)
	assert.Error(t, err)
}

func TestSignerSign(t *testing.T) {
	key := newTestKey(t)
	signer := NewSigner(&AppIdentity{AppID: "12345", PrivateKey: key})

	issuedAt := time.Now()
	signer.now = func() time.Time { return issuedAt }

	assertion, err := signer.Sign()
	require.NoError(t, err)
	assert.NotEmpty(t, assertion.Token)
	assert.Equal(t, issuedAt, assertion.IssuedAt)
	assert.Equal(t, issuedAt.Add(10*time.Minute), assertion.ExpiresAt)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(assertion.Token, claims, func(token *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodRSA{}, token.Method)
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "12345", claims.Issuer)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(10*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestSignerSignFreshPerCall(t *testing.T) {
	signer := newTestSigner(t)

	now := time.Now()
	signer.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	first, err := signer.Sign()
	require.NoError(t, err)
	second, err := signer.Sign()
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.IssuedAt.After(first.IssuedAt))
}
