package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	content := `backend_url: https://trade.example.com
page_size: 100
fetch_timeout: 5s
ui:
  port: 9000
  dev: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datagrid.yaml"), []byte(content), 0600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://trade.example.com", cfg.BackendURL)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 9000, cfg.GetUIConfig().Port)
	assert.True(t, cfg.GetUIConfig().Dev)
	assert.Contains(t, GetConfigFileUsed(), "datagrid.yaml")
}

func TestLoadConfigFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "datagrid.yaml"),
		[]byte("page_size: 50\n"), 0600))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PageSize)
}

func TestEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datagrid.yaml"),
		[]byte("backend_url: http://file.example.com\n"), 0600))
	t.Setenv("DATAGRID_BACKEND_URL", "http://env.example.com")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com", cfg.BackendURL)
}

func TestFlagsOverrideEverything(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("DATAGRID_BACKEND_URL", "http://env.example.com")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "", "")
	flags.Int("page-size", 0, "")
	require.NoError(t, flags.Set("backend", "http://flag.example.com"))
	require.NoError(t, flags.Set("page-size", "500"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example.com", cfg.BackendURL)
	assert.Equal(t, 500, cfg.PageSize)
}

func TestAPITokenEnvExpansion(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datagrid.yaml"),
		[]byte("api_token: ${DATAGRID_TEST_TOKEN}\n"), 0600))
	t.Setenv("DATAGRID_TEST_TOKEN", "sekrit")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.APIToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:      "missing backend url",
			mutate:    func(c *Config) { c.BackendURL = "" },
			errSubstr: "backend_url is required",
		},
		{
			name:      "malformed backend url",
			mutate:    func(c *Config) { c.BackendURL = "not-a-url" },
			errSubstr: "not a valid URL",
		},
		{
			name:      "disallowed page size",
			mutate:    func(c *Config) { c.PageSize = 33 },
			errSubstr: "page_size",
		},
		{
			name:      "zero fetch timeout",
			mutate:    func(c *Config) { c.FetchTimeout = 0 },
			errSubstr: "fetch_timeout",
		},
		{
			name:      "ui port out of range",
			mutate:    func(c *Config) { c.UI = &UIConfig{Port: 70000} },
			errSubstr: "ui.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				BackendURL:   DefaultBackendURL,
				PageSize:     DefaultPageSize,
				FetchTimeout: DefaultFetchTimeout,
			}
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}
