package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Behavior.Separator == "" {
		return fmt.Errorf("behavior.separator must not be empty")
	}
	if strings.TrimSpace(c.Paths.LinksFile) == "" {
		return fmt.Errorf("paths.links_file must not be empty")
	}
	if strings.TrimSpace(c.Paths.MappingFile) == "" {
		return fmt.Errorf("paths.mapping_file must not be empty")
	}
	if c.Tools.GalleryDL == "" {
		return fmt.Errorf("tools.gallery_dl must not be empty")
	}
	if c.Tools.Wget == "" {
		return fmt.Errorf("tools.wget must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
