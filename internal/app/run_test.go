package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/zerowrap"
)

// emptyConfigFile returns a path to an empty config file so the
// search-path lookup never picks up a real config from the host.
func emptyConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hytalepanel.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, loadConfig(v, emptyConfigFile(t)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, "24h", cfg.Auth.TokenExpiry)
	assert.NotEmpty(t, cfg.Registry.Image)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hytalepanel.yaml")
	content := []byte("server:\n  addr: \":9000\"\nmodtale:\n  api_key: secret\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	v := viper.New()
	require.NoError(t, loadConfig(v, path))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Modtale.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HYTALEPANEL_SERVER_ADDR", ":7000")

	v := viper.New()
	require.NoError(t, loadConfig(v, emptyConfigFile(t)))

	assert.Equal(t, ":7000", v.GetString("server.addr"))
}

func TestCreateAuthService_GeneratesEphemeralSecret(t *testing.T) {
	cfg := Config{}
	cfg.Auth.Username = "admin"
	cfg.Auth.TokenExpiry = "1h"

	svc, err := createAuthService(cfg, zerowrap.New(zerowrap.Config{Level: "error"}))
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
}

func TestCreateAuthService_RejectsBadExpiry(t *testing.T) {
	cfg := Config{}
	cfg.Auth.TokenExpiry = "soon"

	_, err := createAuthService(cfg, zerowrap.New(zerowrap.Config{Level: "error"}))
	require.Error(t, err)
}

func TestCreateAuthService_EnabledWithHash(t *testing.T) {
	cfg := Config{}
	cfg.Auth.Username = "admin"
	cfg.Auth.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	cfg.Auth.TokenSecret = "static-secret"
	cfg.Auth.TokenExpiry = (12 * time.Hour).String()

	svc, err := createAuthService(cfg, zerowrap.New(zerowrap.Config{Level: "error"}))
	require.NoError(t, err)
	assert.True(t, svc.IsEnabled())
}
