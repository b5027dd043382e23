package appstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultCredentialSource loads API credentials from a HashiCorp Vault KV v2
// secret. The secret is expected to hold the fields api_key_id, issuer_id,
// and private_key (PEM, inline).
type VaultCredentialSource struct {
	client     *vault.Client
	mountPath  string
	secretPath string
	log        *slog.Logger
}

// NewVaultCredentialSource creates a credential source backed by Vault.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault authentication token
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - secretPath: path within the mount (e.g. "appstore/api")
//   - log: structured logger for operational insights
func NewVaultCredentialSource(address, token, mountPath, secretPath string, log *slog.Logger) (*VaultCredentialSource, error) {
	config := vault.DefaultConfig()
	config.Address = address

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultCredentialSource{
		client:     client,
		mountPath:  strings.TrimSuffix(mountPath, "/"),
		secretPath: strings.Trim(secretPath, "/"),
		log:        log,
	}, nil
}

// Credentials fetches and validates the credential fields from Vault.
func (s *VaultCredentialSource) Credentials(ctx context.Context) (*Credentials, error) {
	secret, err := s.client.KVv2(s.mountPath).Get(ctx, s.secretPath)
	if err != nil {
		return nil, &CredentialError{Reason: fmt.Sprintf("fetch %s/%s from Vault", s.mountPath, s.secretPath), Err: err}
	}

	keyID, _ := secret.Data["api_key_id"].(string)
	issuerID, _ := secret.Data["issuer_id"].(string)
	pemData, _ := secret.Data["private_key"].(string)

	var missing []string
	if strings.TrimSpace(keyID) == "" {
		missing = append(missing, "api_key_id")
	}
	if strings.TrimSpace(issuerID) == "" {
		missing = append(missing, "issuer_id")
	}
	if strings.TrimSpace(pemData) == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, &CredentialError{Reason: "vault secret missing fields: " + strings.Join(missing, ", ")}
	}

	privateKey, err := ParsePrivateKey([]byte(pemData))
	if err != nil {
		return nil, err
	}

	s.log.Debug("Loaded API credentials from Vault",
		slog.String("mount", s.mountPath),
		slog.String("path", s.secretPath))

	return &Credentials{
		KeyID:      strings.TrimSpace(keyID),
		IssuerID:   strings.TrimSpace(issuerID),
		PrivateKey: privateKey,
	}, nil
}
