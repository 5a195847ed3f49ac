// Package hashicorp loads credential store bindings from HashiCorp Vault's
// KV v2 engine.
//
// A binding is kept at "secret/data/credstore/{alias}/binding" with the same
// fields the platform injects:
//
//	vault kv put secret/credstore/orders-service/binding \
//	    url=https://credstore.example.com/api/v1/credentials \
//	    username=... password=... \
//	    client_private_key=MIIEvQ... server_public_key=MIIBIj...
//
// # Basic Usage
//
//	import (
//	    "github.com/hengadev/credstore"
//	    vaultbinding "github.com/hengadev/credstore/providers/bindings/hashicorp"
//	)
//
//	source, err := vaultbinding.NewBindingStore("orders-service")
//	if err != nil {
//	    // handle error
//	}
//
//	binding, err := source.LoadBinding(ctx)
//	if err != nil {
//	    // handle error
//	}
//	client, err := credstore.New(binding)
//
// # Configuration
//
// Vault is configured via environment variables:
//
//   - VAULT_ADDR: Vault server address (required)
//   - VAULT_NAMESPACE: Vault namespace for HCP Vault (optional)
//   - VAULT_TOKEN: Direct Vault token (optional, alternative to AppRole)
//   - VAULT_ROLE_ID / VAULT_SECRET_ID: AppRole credentials (optional)
//
// The KV v2 engine must be enabled at "secret/":
//
//	vault secrets enable -path=secret kv-v2
package hashicorp
