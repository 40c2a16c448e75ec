package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/chatbridge/internal/config"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	for _, name := range []string{"api-key-env", "endpoint", "timeout"} {
		assert.NotNil(t, mcpServeCmd.Flags().Lookup(name), name)
	}
}

func TestMCPServerOptions_TimeoutFromConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("timeout: 45s\napi_key_env: TEAM_KEY\n"), 0o600))

	opts, err := loadOptions(config.Options{})
	require.NoError(t, err)

	got := mcpServerOptions(opts)
	assert.Equal(t, 45*time.Second, got.Timeout)
	assert.Equal(t, "TEAM_KEY", got.APIKeyEnv)
	assert.NotNil(t, got.Invoker)
}

func TestMCPServerOptions_FlagOverridesConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("timeout: 45s\n"), 0o600))

	opts, err := loadOptions(config.Options{Timeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, mcpServerOptions(opts).Timeout)
}
