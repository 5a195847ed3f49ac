package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BindingSource yields the Binding of one credential store instance.
// Implementations live next to their backing service: environment and files
// here, Vault and AWS Secrets Manager under providers/bindings.
type BindingSource interface {
	LoadBinding(ctx context.Context) (Binding, error)
}

// serviceEntry is one element of the credstore array in VCAP_SERVICES.
type serviceEntry struct {
	Name         string   `json:"name"`
	InstanceName string   `json:"instance_name"`
	Label        string   `json:"label"`
	Tags         []string `json:"tags"`
	Credentials  Binding  `json:"credentials"`
}

// EnvSource reads the binding from VCAP_SERVICES, loading .env files first.
type EnvSource struct {
	// ServiceName selects the instance; empty picks the first credstore entry.
	ServiceName string
	// EnvFiles are loaded with godotenv before reading the environment.
	// Missing files are ignored. Existing variables are never overridden.
	EnvFiles []string
}

func (s EnvSource) LoadBinding(ctx context.Context) (Binding, error) {
	for _, file := range s.EnvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Binding{}, fmt.Errorf("%w: load env file %s: %w", ErrInvalidConfiguration, file, err)
		}
	}

	raw := os.Getenv(EnvVCAPServices)
	if raw == "" {
		if path := os.Getenv(EnvBindingFile); path != "" {
			return FileSource{Path: path, ServiceName: s.ServiceName}.LoadBinding(ctx)
		}
		return Binding{}, fmt.Errorf("%w: %s environment variable is required", ErrInvalidConfiguration, EnvVCAPServices)
	}
	return ParseVCAPServices([]byte(raw), s.ServiceName)
}

// LoadBindingFromEnvironment reads the binding the platform injected.
//
// A local ".env" file is loaded first when present. The credstore entry is
// taken from VCAP_SERVICES; when serviceName is empty CREDSTORE_SERVICE_NAME
// is used, and when both are empty the first credstore entry wins. When
// VCAP_SERVICES is unset, CREDSTORE_BINDING_FILE is read instead.
//
// Example usage:
//
//	binding, err := credstore.LoadBindingFromEnvironment("CredentialStoreServiceInstance")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := credstore.New(binding)
func LoadBindingFromEnvironment(serviceName string) (Binding, error) {
	if serviceName == "" {
		serviceName = os.Getenv(EnvServiceName)
	}
	return EnvSource{ServiceName: serviceName, EnvFiles: []string{".env"}}.LoadBinding(context.Background())
}

// ParseVCAPServices extracts one credstore binding from a VCAP_SERVICES
// document and validates it.
func ParseVCAPServices(data []byte, serviceName string) (Binding, error) {
	var services map[string][]serviceEntry
	if err := json.Unmarshal(data, &services); err != nil {
		return Binding{}, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfiguration, EnvVCAPServices, err)
	}

	// credstore entries first, then user-provided services tagged credstore
	labels := make([]string, 0, len(services))
	for label := range services {
		if label != ServiceLabel {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	labels = append([]string{ServiceLabel}, labels...)

	var candidates []serviceEntry
	for _, label := range labels {
		for _, entry := range services[label] {
			if label == ServiceLabel || entry.Label == ServiceLabel || hasTag(entry.Tags, ServiceLabel) {
				candidates = append(candidates, entry)
			}
		}
	}
	if len(candidates) == 0 {
		return Binding{}, fmt.Errorf("%w: no %s service bound", ErrInvalidConfiguration, ServiceLabel)
	}

	entry := candidates[0]
	if serviceName != "" {
		found := false
		for _, candidate := range candidates {
			if candidate.Name == serviceName || candidate.InstanceName == serviceName {
				entry, found = candidate, true
				break
			}
		}
		if !found {
			return Binding{}, fmt.Errorf("%w: %s service %q not bound", ErrInvalidConfiguration, ServiceLabel, serviceName)
		}
	}

	return validated(entry.Credentials)
}

// FileSource reads a binding from disk. Three shapes are understood:
//   - default-env.json style: {"VCAP_SERVICES": {...}}
//   - a bare binding as JSON
//   - a bare binding as YAML (.yaml or .yml)
type FileSource struct {
	Path        string
	ServiceName string
}

func (s FileSource) LoadBinding(ctx context.Context) (Binding, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: read binding file: %w", ErrInvalidConfiguration, err)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		var binding Binding
		if err := yaml.Unmarshal(data, &binding); err != nil {
			return Binding{}, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfiguration, filepath.Base(s.Path), err)
		}
		return validated(binding)
	}

	var envFile struct {
		VCAPServices json.RawMessage `json:"VCAP_SERVICES"`
	}
	if err := json.Unmarshal(data, &envFile); err != nil {
		return Binding{}, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfiguration, filepath.Base(s.Path), err)
	}
	if len(envFile.VCAPServices) > 0 {
		return ParseVCAPServices(envFile.VCAPServices, s.ServiceName)
	}

	binding, err := ParseBinding(data)
	if err != nil {
		return Binding{}, fmt.Errorf("parse %s: %w", filepath.Base(s.Path), err)
	}
	return binding, nil
}

// ParseBinding decodes and validates a bare binding document. Besides the
// nested "encryption" object, flat "client_private_key" and
// "server_public_key" fields are accepted, which is how secret stores with
// a single level of keys usually hold them.
func ParseBinding(data []byte) (Binding, error) {
	var doc struct {
		Binding
		ClientPrivateKey string `json:"client_private_key"`
		ServerPublicKey  string `json:"server_public_key"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Binding{}, fmt.Errorf("%w: parse binding: %w", ErrInvalidConfiguration, err)
	}

	binding := doc.Binding
	if binding.Encryption.ClientPrivateKey == "" {
		binding.Encryption.ClientPrivateKey = doc.ClientPrivateKey
	}
	if binding.Encryption.ServerPublicKey == "" {
		binding.Encryption.ServerPublicKey = doc.ServerPublicKey
	}
	return validated(binding)
}

// LoadBindingFromFile is a shorthand for FileSource.
func LoadBindingFromFile(path string) (Binding, error) {
	return FileSource{Path: path}.LoadBinding(context.Background())
}

func validated(binding Binding) (Binding, error) {
	if err := binding.Validate(); err != nil {
		return Binding{}, err
	}
	return binding, nil
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
