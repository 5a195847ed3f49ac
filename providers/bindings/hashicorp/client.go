package hashicorp

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/credstore"
)

// Environment variables read by newVaultClient.
const (
	EnvVaultAddr      = "VAULT_ADDR"
	EnvVaultNamespace = "VAULT_NAMESPACE"
	EnvVaultToken     = "VAULT_TOKEN"
	EnvVaultRoleID    = "VAULT_ROLE_ID"
	EnvVaultSecretID  = "VAULT_SECRET_ID"
)

// newVaultClient creates a configured Vault client using environment variables.
//
// Authentication Priority:
//  1. If VAULT_TOKEN is set, uses token directly
//  2. If VAULT_ROLE_ID and VAULT_SECRET_ID are set, uses AppRole authentication
//  3. Otherwise, returns error (no authentication method available)
func newVaultClient(ctx context.Context) (*api.Client, error) {
	config := api.DefaultConfig()

	if addr := os.Getenv(EnvVaultAddr); addr != "" {
		config.Address = addr
	}
	if config.Address == "" {
		return nil, fmt.Errorf("%w: %s environment variable is required", credstore.ErrInvalidConfiguration, EnvVaultAddr)
	}

	config.HttpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %w", credstore.ErrBindingSourceUnavailable, err)
	}

	if namespace := os.Getenv(EnvVaultNamespace); namespace != "" {
		client.SetNamespace(namespace)
	}

	if token := os.Getenv(EnvVaultToken); token != "" {
		client.SetToken(token)
		return client, nil
	}

	roleID := os.Getenv(EnvVaultRoleID)
	secretID := os.Getenv(EnvVaultSecretID)
	if roleID != "" && secretID != "" {
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   roleID,
			"secret_id": secretID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to login with AppRole: %w", credstore.ErrAuthenticationFailed, err)
		}
		if resp == nil || resp.Auth == nil {
			return nil, fmt.Errorf("%w: no auth info returned from AppRole login", credstore.ErrAuthenticationFailed)
		}

		client.SetToken(resp.Auth.ClientToken)
		return client, nil
	}

	return nil, fmt.Errorf("%w: no Vault authentication method configured (set %s or %s+%s)",
		credstore.ErrInvalidConfiguration, EnvVaultToken, EnvVaultRoleID, EnvVaultSecretID)
}
