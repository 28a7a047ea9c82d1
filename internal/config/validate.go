package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAniDB(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateAniDB() error {
	if c.AniDB.Port <= 0 || c.AniDB.Port > 65535 {
		return fmt.Errorf("anidb.port must be between 1 and 65535, got %d", c.AniDB.Port)
	}
	if c.AniDB.LocalPort < 0 || c.AniDB.LocalPort > 65535 {
		return fmt.Errorf("anidb.local_port must be between 0 and 65535, got %d", c.AniDB.LocalPort)
	}
	if c.AniDB.RequestIntervalSeconds < 2 {
		return errors.New("anidb.request_interval_seconds must be at least 2 (AniDB rate limit)")
	}
	if c.AniDB.RetryAttempts < 1 {
		return errors.New("anidb.retry_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
