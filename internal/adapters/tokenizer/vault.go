package tokenizer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// VaultConfig contains configuration for the Vault KV v2 tokenizer
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string
	Token      string
	RoleID     string
	SecretID   string

	// Vault Enterprise namespace
	Namespace string

	// KV v2 mount (default: "secret")
	MountPath string

	// Path under the mount where tokens are written (default: "ach/bank-accounts")
	PathPrefix string

	TLSSkipVerify bool
}

// DefaultVaultConfig returns token-auth defaults
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:    address,
		AuthMethod: "token",
		MountPath:  "secret",
		PathPrefix: "ach/bank-accounts",
	}
}

// VaultTokenizer writes each bank account to its own KV v2 secret
type VaultTokenizer struct {
	client *vault.Client
	config *VaultConfig
	logger ports.Logger
	now    func() time.Time
}

var _ ports.Tokenizer = (*VaultTokenizer)(nil)

// NewVaultTokenizer creates and authenticates a Vault client
func NewVaultTokenizer(ctx context.Context, cfg *VaultConfig, logger ports.Logger) (*VaultTokenizer, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("authenticate with Vault: %w", err)
	}

	logger.Info("Vault tokenizer initialized",
		ports.String("address", cfg.Address),
		ports.String("auth_method", cfg.AuthMethod),
		ports.String("mount_path", cfg.MountPath))

	return &VaultTokenizer{client: client, config: cfg, logger: logger, now: time.Now}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token", "":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// Tokenize writes the account to <mount>/data/<prefix>/<org>/<token>
func (t *VaultTokenizer) Tokenize(ctx context.Context, req *ports.TokenizeRequest) (*ports.Token, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tokenID := newTokenID()
	path := secretPath(t.config.PathPrefix, req.OrganizationID, tokenID)
	fullPath := fmt.Sprintf("%s/data/%s", t.config.MountPath, path)

	doc, err := json.Marshal(newStoredSecret(req))
	if err != nil {
		return nil, fmt.Errorf("marshal secret: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("marshal secret: %w", err)
	}

	resp, err := t.client.Logical().WriteWithContext(ctx, fullPath, map[string]interface{}{"data": data})
	if err != nil {
		t.logger.Error("Failed to write token to Vault",
			ports.String("token_id", tokenID),
			ports.Err(err))
		return nil, fmt.Errorf("write secret: %w", err)
	}

	version := "1"
	if resp != nil && resp.Data != nil {
		if v, ok := resp.Data["version"].(json.Number); ok {
			version = v.String()
		}
	}

	t.logger.Debug("Bank account tokenized",
		ports.String("token_id", tokenID),
		ports.String("backend", "vault"))

	return &ports.Token{
		ID:        tokenID,
		Type:      newStoredSecret(req).Type,
		Version:   version,
		CreatedAt: t.now(),
	}, nil
}
