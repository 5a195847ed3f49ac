package credstore

// Credential types understood by the store. Any non-empty type is accepted
// as a path segment; these cover the store's documented kinds.
const (
	TypePassword = "password"
	TypeKey      = "key"
	TypeKeyring  = "keyring"
)

// Environment variable names
const (
	// EnvVCAPServices holds the platform's service bindings as JSON.
	EnvVCAPServices = "VCAP_SERVICES"

	// EnvServiceName selects one credstore instance by name when several are bound.
	// Example: "CredentialStoreServiceInstance"
	EnvServiceName = "CREDSTORE_SERVICE_NAME"

	// EnvBindingFile points at a binding file (default-env.json, .json or .yaml).
	// It is consulted when VCAP_SERVICES is unset.
	EnvBindingFile = "CREDSTORE_BINDING_FILE"

	// EnvNamespace is the default namespace used by the CLI.
	EnvNamespace = "CREDSTORE_NAMESPACE"
)

// Default values
const (
	// ServiceLabel is the key of the credstore entries inside VCAP_SERVICES.
	ServiceLabel = "credstore"

	// DefaultEnvFile mirrors the local development file of the platform tooling.
	DefaultEnvFile = "default-env.json"
)

// Storage path templates for the binding providers
const (
	// AWSBindingPathTemplate is the AWS Secrets Manager secret name of a binding.
	// Example: "credstore/orders-service/binding"
	AWSBindingPathTemplate = "credstore/%s/binding"

	// VaultBindingPathTemplate is the Vault KV v2 path of a binding.
	// Example: "secret/data/credstore/orders-service/binding"
	VaultBindingPathTemplate = "secret/data/credstore/%s/binding"
)
