package config

import "strings"

func (c *Config) normalize() error {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.Server.OwnerCode = strings.TrimSpace(c.Server.OwnerCode)

	c.Upload.DefaultContentType = strings.TrimSpace(c.Upload.DefaultContentType)
	if c.Upload.DefaultContentType == "" {
		c.Upload.DefaultContentType = "application/octet-stream"
	}

	c.Wizard.Flow = strings.ToLower(strings.TrimSpace(c.Wizard.Flow))
	if c.Wizard.Flow == "" {
		c.Wizard.Flow = FlowSourceDetails
	}

	c.Languages.DefaultSource = strings.TrimSpace(c.Languages.DefaultSource)
	targets := c.Languages.AllowedTargets[:0]
	for _, target := range c.Languages.AllowedTargets {
		if trimmed := strings.TrimSpace(target); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	c.Languages.AllowedTargets = targets

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	for _, dir := range []*string{&c.History.Dir, &c.Logging.Dir} {
		if strings.TrimSpace(*dir) == "" {
			continue
		}
		expanded, err := expandPath(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	return nil
}
