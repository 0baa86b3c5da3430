package config

import (
	"fmt"
	"net/url"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

// Validate checks if the configuration is valid.
func Validate(c *Config) error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend_url %q is not a valid URL", c.BackendURL)
	}

	if !explorer.ValidPageSize(c.PageSize) {
		return fmt.Errorf("page_size %d is not allowed (choose one of %v)", c.PageSize, explorer.AllowedPageSizes)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive")
	}

	if ui := c.UI; ui != nil && (ui.Port < 0 || ui.Port > 65535) {
		return fmt.Errorf("ui.port %d is out of range", ui.Port)
	}
	if demo := c.Demo; demo != nil && (demo.Port < 0 || demo.Port > 65535) {
		return fmt.Errorf("demo.port %d is out of range", demo.Port)
	}

	return nil
}
