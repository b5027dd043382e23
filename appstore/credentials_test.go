package appstore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyFile writes a PKCS#8 encoded P-256 private key to path.
func writeKeyFile(t *testing.T, path string) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0600))
	return key
}

func writeCredentialsDir(t *testing.T, keyID, issuerID, keyPath string) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf("APP_STORE_API_KEY_ID=%s\nAPP_STORE_API_ISSUER_ID=%s\nAPP_STORE_API_PRIVATE_KEY_PATH=%s\n",
		keyID, issuerID, keyPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte(content), 0600))
	return dir
}

func TestLoadCredentials(t *testing.T) {
	dir := writeCredentialsDir(t, "ABC123", "issuer-1", "AuthKey_ABC123.p8")
	key := writeKeyFile(t, filepath.Join(dir, "AuthKey_ABC123.p8"))

	creds, err := LoadCredentials(dir)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", creds.KeyID)
	assert.Equal(t, "issuer-1", creds.IssuerID)
	assert.True(t, key.Equal(creds.PrivateKey))
}

func TestLoadCredentialsAbsoluteKeyPath(t *testing.T) {
	keyDir := t.TempDir()
	keyPath := filepath.Join(keyDir, "key.p8")
	writeKeyFile(t, keyPath)

	dir := writeCredentialsDir(t, "ABC123", "issuer-1", keyPath)

	creds, err := LoadCredentials(dir)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", creds.KeyID)
}

func TestLoadCredentialsEnvFileTexture(t *testing.T) {
	// Comments, blank lines, export prefixes and quoting are all accepted
	dir := t.TempDir()
	writeKeyFile(t, filepath.Join(dir, "key.p8"))
	content := "# credentials for the release pipeline\n\n" +
		"export APP_STORE_API_KEY_ID=\"ABC123\"\n" +
		"APP_STORE_API_ISSUER_ID='issuer-1'\n" +
		"APP_STORE_API_PRIVATE_KEY_PATH=key.p8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte(content), 0600))

	creds, err := LoadCredentials(dir)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", creds.KeyID)
	assert.Equal(t, "issuer-1", creds.IssuerID)
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := LoadCredentials(t.TempDir())
	require.Error(t, err)

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestLoadCredentialsMissingValues(t *testing.T) {
	dir := t.TempDir()
	content := "APP_STORE_API_KEY_ID=ABC123\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte(content), 0600))

	_, err := LoadCredentials(dir)
	require.Error(t, err)

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	// Every missing variable is named so the operator can fix all at once
	assert.Contains(t, err.Error(), "APP_STORE_API_ISSUER_ID")
	assert.Contains(t, err.Error(), "APP_STORE_API_PRIVATE_KEY_PATH")
	assert.NotContains(t, err.Error(), "APP_STORE_API_KEY_ID,")
}

func TestLoadCredentialsMissingKeyFile(t *testing.T) {
	dir := writeCredentialsDir(t, "ABC123", "issuer-1", "nope.p8")

	_, err := LoadCredentials(dir)
	require.Error(t, err)

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, err.Error(), "nope.p8")
}

func TestParsePrivateKeySEC1Fallback(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	parsed, err := ParsePrivateKey(data)
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))
}

func TestParsePrivateKeyRejectsWrongCurve(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	_, err = ParsePrivateKey(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P-256")
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePrivateKey([]byte("not a pem block"))
	require.Error(t, err)

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestDirCredentialSource(t *testing.T) {
	dir := writeCredentialsDir(t, "ABC123", "issuer-1", "key.p8")
	writeKeyFile(t, filepath.Join(dir, "key.p8"))

	source := DirCredentialSource(dir)
	creds, err := source.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", creds.KeyID)
}
