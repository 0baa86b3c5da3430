// Package config provides configuration management for the DataGrid CLI.
package config

import "time"

// UIConfig holds configuration for the dashboard server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Dev           bool   `koanf:"dev"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:          8765,
		SessionSecret: "datagrid-dev-secret",
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset
// values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = 8765
	}
	if ui.SessionSecret == "" {
		ui.SessionSecret = "datagrid-dev-secret"
	}
	return ui
}

// DemoConfig holds configuration for the embedded demo backend.
type DemoConfig struct {
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
}

// GetDemoConfig returns the demo config with defaults applied.
func (c *Config) GetDemoConfig() *DemoConfig {
	if c.Demo == nil {
		return &DemoConfig{Port: DefaultDemoPort}
	}
	demo := c.Demo
	if demo.Port == 0 {
		demo.Port = DefaultDemoPort
	}
	return demo
}

// Config holds all CLI configuration options.
type Config struct {
	BackendURL   string        `koanf:"backend_url"`
	APIToken     string        `koanf:"api_token"`
	PageSize     int           `koanf:"page_size"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	UI           *UIConfig     `koanf:"ui"`
	Demo         *DemoConfig   `koanf:"demo"`
}

// Default configuration values.
const (
	DefaultBackendURL   = "http://localhost:9090"
	DefaultPageSize     = 25
	DefaultFetchTimeout = 30 * time.Second
	DefaultOutput       = "table"
	DefaultDemoPort     = 9090
)
