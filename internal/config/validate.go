package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values the workflow cannot run with.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.Server.BaseURL)
	if base == "" {
		return fmt.Errorf("server.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.base_url %q is not an absolute URL", base)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme %q is not supported", parsed.Scheme)
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}
	if c.Upload.CloseDelayMS < 0 {
		return fmt.Errorf("upload.close_delay_ms must not be negative")
	}
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must not be negative")
	}

	switch c.Wizard.Flow {
	case FlowSourceDetails, FlowUploadSettings:
	default:
		return fmt.Errorf("wizard.flow %q is not a known flow", c.Wizard.Flow)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported", c.Logging.Format)
	}

	return nil
}
