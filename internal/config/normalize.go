package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAniDB()
	c.normalizeEd2k()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAniDB() {
	c.AniDB.Server = strings.TrimSpace(c.AniDB.Server)
	c.AniDB.ClientName = strings.TrimSpace(c.AniDB.ClientName)
	c.AniDB.ClientVersion = strings.TrimSpace(c.AniDB.ClientVersion)
	if c.AniDB.Server == "" {
		c.AniDB.Server = defaultAniDBServer
	}
	if c.AniDB.Port == 0 {
		c.AniDB.Port = defaultAniDBPort
	}
	if c.AniDB.LocalPort == 0 {
		c.AniDB.LocalPort = defaultAniDBLocalPort
	}
	if c.AniDB.ClientName == "" {
		c.AniDB.ClientName = defaultClientName
	}
	if c.AniDB.ClientVersion == "" {
		c.AniDB.ClientVersion = defaultClientVersion
	}
	if c.AniDB.ProtocolVersion == 0 {
		c.AniDB.ProtocolVersion = defaultProtocolVersion
	}
	if c.AniDB.RequestIntervalSeconds == 0 {
		c.AniDB.RequestIntervalSeconds = defaultRequestIntervalSeconds
	}
	if c.AniDB.FloodWaitSeconds == 0 {
		c.AniDB.FloodWaitSeconds = defaultFloodWaitSeconds
	}
	if c.AniDB.TimeoutSeconds == 0 {
		c.AniDB.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.AniDB.RetryAttempts == 0 {
		c.AniDB.RetryAttempts = defaultRetryAttempts
	}
}

func (c *Config) normalizeEd2k() {
	c.Ed2k.Binary = strings.TrimSpace(c.Ed2k.Binary)
	if c.Ed2k.Binary == "" {
		c.Ed2k.Binary = defaultEd2kBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(trimmed), nil
}
