package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hengadev/credstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigValidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "credstore.yaml")

	configContent := `
namespace: orders
type: key
source:
  kind: vault
  alias: orders-service
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, "1", config.Version)
	assert.Equal(t, "orders", config.Namespace)
	assert.Equal(t, credstore.TypeKey, config.Type)
	assert.Equal(t, SourceVault, config.Source.Kind)
	assert.Equal(t, "orders-service", config.Source.Alias)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/credstore.yaml")
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("source: [unterminated"), 0644))

	_, err := LoadConfig(configFile)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv(credstore.EnvNamespace, "payments")
	configFile := filepath.Join(t.TempDir(), "credstore.yaml")

	require.NoError(t, SaveConfig(DefaultConfig(), configFile))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)
	assert.Equal(t, "payments", config.Namespace)
	assert.Equal(t, SourceEnv, config.Source.Kind)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  SourceConfig
		credTyp string
		wantErr string
	}{
		{name: "env", source: SourceConfig{Kind: SourceEnv}, credTyp: credstore.TypePassword},
		{name: "file", source: SourceConfig{Kind: SourceFile, Path: "binding.json"}, credTyp: credstore.TypePassword},
		{name: "file without path", source: SourceConfig{Kind: SourceFile}, credTyp: credstore.TypePassword, wantErr: "source.path"},
		{name: "aws without alias", source: SourceConfig{Kind: SourceAWS}, credTyp: credstore.TypePassword, wantErr: "source.alias"},
		{name: "unknown kind", source: SourceConfig{Kind: "consul"}, credTyp: credstore.TypePassword, wantErr: "source.kind"},
		{name: "empty type", source: SourceConfig{Kind: SourceEnv}, wantErr: "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Type: tt.credTyp, Source: tt.source}
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigBindingSource(t *testing.T) {
	config := &Config{Source: SourceConfig{Kind: SourceFile, Path: "binding.json", Service: "cs"}}
	source, err := config.BindingSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, credstore.FileSource{Path: "binding.json", ServiceName: "cs"}, source)

	config = &Config{Source: SourceConfig{Kind: SourceEnv, Service: "cs"}}
	source, err = config.BindingSource(context.Background())
	require.NoError(t, err)
	assert.IsType(t, credstore.EnvSource{}, source)
}
