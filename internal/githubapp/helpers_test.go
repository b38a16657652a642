package githubapp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestKey generates a throwaway RSA key for signing tests.
func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// newTestSigner returns a signer backed by a fresh throwaway key.
func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	return NewSigner(&AppIdentity{AppID: "12345", PrivateKey: newTestKey(t)})
}

// newTestFactory returns a client factory pointed at a local test server.
func newTestFactory(t *testing.T, serverURL string) *ClientFactory {
	t.Helper()
	factory, err := NewClientFactoryWithBaseURL(newTestSigner(t), serverURL+"/")
	require.NoError(t, err)
	return factory
}

// overwriteFile replaces a file's contents.
func overwriteFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o600)
}

// writeTestKeyPEM writes a PKCS#1 PEM file for the key and returns its path.
func writeTestKeyPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	path := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))
	return path
}
