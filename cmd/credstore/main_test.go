package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/hengadev/credstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCLIStore starts a test store and writes its binding to a file.
func newCLIStore(t *testing.T) (*credstore.TestStore, string) {
	t.Helper()

	store, err := credstore.NewTestStore()
	require.NoError(t, err)
	t.Cleanup(store.Close)

	data, err := json.Marshal(store.Binding())
	require.NoError(t, err)

	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "binding.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	t.Setenv(credstore.EnvNamespace, "")
	return store, path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Read(t *testing.T) {
	store, binding := newCLIStore(t)
	require.NoError(t, store.Put("ns1", credstore.TypePassword, "passTest", map[string]string{"name": "passTest", "value": "s3cret"}))

	code, stdout, stderr := runCLI("read", "-binding", binding, "-namespace", "ns1", "passTest")
	require.Equal(t, 0, code, stderr)

	var credential map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &credential))
	assert.Equal(t, "s3cret", credential["value"])
	assert.NotContains(t, stderr, "s3cret")
}

func TestRun_ReadNotFound(t *testing.T) {
	_, binding := newCLIStore(t)

	code, _, stderr := runCLI("read", "-binding", binding, "-namespace", "ns1", "-name", "missing")
	assert.Equal(t, 3, code)
	assert.Contains(t, stderr, "404")
}

func TestRun_WriteAndDelete(t *testing.T) {
	store, binding := newCLIStore(t)
	t.Setenv(credstore.EnvNamespace, "ns1")

	code, stdout, stderr := runCLI("write", "-binding", binding, "-name", "db", "-value", "pw", "-username", "admin")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"db"`)

	stored, ok := store.Get("ns1", credstore.TypePassword, "db")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"db","value":"pw","username":"admin"}`, string(stored))

	code, stdout, stderr = runCLI("delete", "-binding", binding, "db")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Deleted")

	_, ok = store.Get("ns1", credstore.TypePassword, "db")
	assert.False(t, ok)
}

func TestRun_WriteRawData(t *testing.T) {
	store, binding := newCLIStore(t)

	code, _, stderr := runCLI("write", "-binding", binding, "-namespace", "ns1", "-type", credstore.TypeKeyring,
		"-data", `{"name":"ring","keys":[{"value":"a"}]}`)
	require.Equal(t, 0, code, stderr)

	stored, ok := store.Get("ns1", credstore.TypeKeyring, "ring")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"ring","keys":[{"value":"a"}]}`, string(stored))

	code, _, _ = runCLI("write", "-binding", binding, "-namespace", "ns1", "-data", `{broken`)
	assert.Equal(t, 1, code)
}

func TestRun_Errors(t *testing.T) {
	store, binding := newCLIStore(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: 1},
		{name: "unknown command", args: []string{"rotate"}, code: 1},
		{name: "missing namespace", args: []string{"read", "-binding", binding, "x"}, code: 2},
		{name: "missing name", args: []string{"read", "-binding", binding, "-namespace", "ns1"}, code: 1},
		{name: "missing binding file", args: []string{"read", "-binding", "nope.json", "-namespace", "ns1", "x"}, code: 2},
		{name: "explicit config missing", args: []string{"read", "-config", "nope.yaml", "-namespace", "ns1", "x"}, code: 2},
		{name: "help", args: []string{"read", "-h"}, code: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}

	store.FailNext(http.StatusServiceUnavailable)
	code, _, stderr := runCLI("read", "-binding", binding, "-namespace", "ns1", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "503")
}

func TestRun_InitAndVersion(t *testing.T) {
	newCLIStore(t)

	code, _, _ := runCLI("init")
	require.Equal(t, 0, code)
	_, err := os.Stat(DefaultConfigPath)
	require.NoError(t, err)

	code, _, stderr := runCLI("init")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = runCLI("init", "-force")
	assert.Equal(t, 0, code)

	code, stdout, _ := runCLI("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, credstore.Version)
}
