package hashicorp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/credstore"
)

// BindingStore reads and writes one credstore binding in Vault KV v2.
// It implements credstore.BindingSource.
type BindingStore struct {
	client *api.Client
	alias  string
}

var _ credstore.BindingSource = (*BindingStore)(nil)

// NewBindingStore creates a BindingStore for alias, configured from the
// environment (see package documentation).
func NewBindingStore(alias string) (*BindingStore, error) {
	if alias == "" {
		return nil, fmt.Errorf("%w: binding alias is required", credstore.ErrInvalidConfiguration)
	}

	client, err := newVaultClient(context.Background())
	if err != nil {
		return nil, err
	}

	return NewBindingStoreWithClient(client, alias), nil
}

// NewBindingStoreWithClient wraps an already authenticated Vault client.
func NewBindingStoreWithClient(client *api.Client, alias string) *BindingStore {
	return &BindingStore{client: client, alias: alias}
}

// GetStoragePath returns the Vault KV v2 path of the binding.
//
// Path format: "secret/data/credstore/{alias}/binding"
func (s *BindingStore) GetStoragePath() string {
	return fmt.Sprintf(credstore.VaultBindingPathTemplate, s.alias)
}

// LoadBinding reads the latest version of the binding and validates it.
func (s *BindingStore) LoadBinding(ctx context.Context) (credstore.Binding, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.GetStoragePath())
	if err != nil {
		return credstore.Binding{}, fmt.Errorf("%w: failed to read binding from Vault KV: %w",
			credstore.ErrBindingSourceUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return credstore.Binding{}, fmt.Errorf("%w: binding not found for alias: %s",
			credstore.ErrBindingSourceUnavailable, s.alias)
	}

	// KV v2 wraps the actual data in a "data" key
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return credstore.Binding{}, fmt.Errorf("%w: invalid KV v2 secret format for alias: %s",
			credstore.ErrBindingSourceUnavailable, s.alias)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return credstore.Binding{}, fmt.Errorf("%w: encode KV data: %w", credstore.ErrInvalidConfiguration, err)
	}
	return credstore.ParseBinding(raw)
}

// StoreBinding writes binding as a new version. Invalid bindings are
// rejected before anything is sent to Vault.
func (s *BindingStore) StoreBinding(ctx context.Context, binding credstore.Binding) error {
	if err := binding.Validate(); err != nil {
		return err
	}

	data := map[string]interface{}{
		"data": map[string]interface{}{
			"url":      binding.URL,
			"username": binding.Username,
			"password": binding.Password,
			"encryption": map[string]interface{}{
				"client_private_key": binding.Encryption.ClientPrivateKey,
				"server_public_key":  binding.Encryption.ServerPublicKey,
			},
		},
	}

	if _, err := s.client.Logical().WriteWithContext(ctx, s.GetStoragePath(), data); err != nil {
		return fmt.Errorf("%w: failed to store binding in Vault KV: %w",
			credstore.ErrBindingSourceUnavailable, err)
	}
	return nil
}
