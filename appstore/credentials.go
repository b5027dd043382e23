package appstore

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// CredentialsFileName is the env file expected inside the credentials
// directory.
const CredentialsFileName = "api_credentials.env"

// Credentials hold the API key identity and private key material. Immutable
// after load; owned exclusively by the TokenSource.
type Credentials struct {
	KeyID      string
	IssuerID   string
	PrivateKey *ecdsa.PrivateKey
}

// CredentialSource provides credentials from some backing store.
type CredentialSource interface {
	Credentials(ctx context.Context) (*Credentials, error)
}

// credentialsEnv holds raw env values before post-parse validation.
type credentialsEnv struct {
	KeyID          string `env:"APP_STORE_API_KEY_ID"`
	IssuerID       string `env:"APP_STORE_API_ISSUER_ID"`
	PrivateKeyPath string `env:"APP_STORE_API_PRIVATE_KEY_PATH"`
}

// LoadCredentials reads credentials from a directory containing
// api_credentials.env and the private key file it references. All failures
// are reported as *CredentialError before any network activity.
func LoadCredentials(dir string) (*Credentials, error) {
	envPath := filepath.Join(dir, CredentialsFileName)
	vars, err := parseEnvFile(envPath)
	if err != nil {
		return nil, &CredentialError{Reason: fmt.Sprintf("read %s", envPath), Err: err}
	}

	var raw credentialsEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: vars}); err != nil {
		return nil, &CredentialError{Reason: "parse credentials env", Err: err}
	}

	keyID := strings.TrimSpace(raw.KeyID)
	issuerID := strings.TrimSpace(raw.IssuerID)
	keyPath := strings.TrimSpace(raw.PrivateKeyPath)

	var missing []string
	if keyID == "" {
		missing = append(missing, "APP_STORE_API_KEY_ID")
	}
	if issuerID == "" {
		missing = append(missing, "APP_STORE_API_ISSUER_ID")
	}
	if keyPath == "" {
		missing = append(missing, "APP_STORE_API_PRIVATE_KEY_PATH")
	}
	if len(missing) > 0 {
		return nil, &CredentialError{Reason: "missing required credentials: " + strings.Join(missing, ", ")}
	}

	keyPath = expandKeyPath(keyPath)
	if !filepath.IsAbs(keyPath) {
		keyPath = filepath.Join(dir, keyPath)
	}

	pemData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, &CredentialError{Reason: fmt.Sprintf("read private key %s", keyPath), Err: err}
	}

	privateKey, err := ParsePrivateKey(pemData)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		KeyID:      keyID,
		IssuerID:   issuerID,
		PrivateKey: privateKey,
	}, nil
}

// DirCredentialSource loads credentials from a local directory.
type DirCredentialSource string

// Credentials implements CredentialSource for a credentials directory.
func (d DirCredentialSource) Credentials(ctx context.Context) (*Credentials, error) {
	return LoadCredentials(string(d))
}

// ParsePrivateKey parses a PEM-encoded private key and validates it is an
// elliptic curve key on P-256 as required by the ES256 signing algorithm.
func ParsePrivateKey(pemData []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, &CredentialError{Reason: "private key is not PEM encoded"}
	}

	var parsed any
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		ecKey, ecErr := x509.ParseECPrivateKey(block.Bytes)
		if ecErr != nil {
			return nil, &CredentialError{Reason: "parse private key", Err: err}
		}
		parsed = ecKey
	}

	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, &CredentialError{Reason: "private key must be an elliptic curve key for ES256"}
	}
	if ecKey.Curve != elliptic.P256() {
		return nil, &CredentialError{Reason: fmt.Sprintf("private key must use curve P-256, got %s", ecKey.Curve.Params().Name)}
	}
	return ecKey, nil
}

// parseEnvFile reads KEY=VALUE lines from an env file. Blank lines and
// comments are skipped; an optional "export " prefix and surrounding quotes
// are stripped.
func parseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			vars[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// expandKeyPath expands $(pwd) and environment variable references in the
// private key path, as credential setup scripts commonly embed them.
func expandKeyPath(path string) string {
	if strings.Contains(path, "$(pwd)") {
		if cwd, err := os.Getwd(); err == nil {
			path = strings.ReplaceAll(path, "$(pwd)", cwd)
		}
	}
	return os.ExpandEnv(path)
}
