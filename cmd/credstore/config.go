package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/credstore"
	awsbinding "github.com/hengadev/credstore/providers/bindings/aws"
	vaultbinding "github.com/hengadev/credstore/providers/bindings/hashicorp"
)

// Binding source kinds
const (
	SourceEnv   = "env"
	SourceFile  = "file"
	SourceVault = "vault"
	SourceAWS   = "aws"
)

// DefaultConfigPath is read when -config is not given.
const DefaultConfigPath = "credstore.yaml"

// Config represents the CLI configuration file
type Config struct {
	Version   string       `yaml:"version"`
	Namespace string       `yaml:"namespace"`
	Type      string       `yaml:"type"`
	Source    SourceConfig `yaml:"source"`
}

// SourceConfig selects where the binding comes from
type SourceConfig struct {
	Kind    string `yaml:"kind"`
	Service string `yaml:"service,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Alias   string `yaml:"alias,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadConfigOrDefault falls back to DefaultConfig when the default config
// file is absent. An explicitly named file must exist.
func loadConfigOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   "1",
		Namespace: os.Getenv(credstore.EnvNamespace),
		Type:      credstore.TypePassword,
		Source: SourceConfig{
			Kind:    SourceEnv,
			Service: os.Getenv(credstore.EnvServiceName),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1"
	}

	if c.Type == "" {
		return fmt.Errorf("type cannot be empty")
	}

	switch c.Source.Kind {
	case SourceEnv:
	case SourceFile:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for the %q source", SourceFile)
		}
	case SourceVault, SourceAWS:
		if c.Source.Alias == "" {
			return fmt.Errorf("source.alias is required for the %q source", c.Source.Kind)
		}
	default:
		return fmt.Errorf("source.kind must be one of: %s, %s, %s, %s", SourceEnv, SourceFile, SourceVault, SourceAWS)
	}

	return nil
}

// BindingSource builds the configured source.
func (c *Config) BindingSource(ctx context.Context) (credstore.BindingSource, error) {
	switch c.Source.Kind {
	case SourceFile:
		return credstore.FileSource{Path: c.Source.Path, ServiceName: c.Source.Service}, nil
	case SourceVault:
		return vaultbinding.NewBindingStore(c.Source.Alias)
	case SourceAWS:
		return awsbinding.NewBindingStore(ctx, awsbinding.Config{Alias: c.Source.Alias, Region: c.Source.Region})
	default:
		return credstore.EnvSource{ServiceName: c.Source.Service, EnvFiles: []string{".env"}}, nil
	}
}
