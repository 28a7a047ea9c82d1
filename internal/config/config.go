package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AniDB contains configuration for the AniDB UDP API client.
type AniDB struct {
	Server                 string `toml:"server"`
	Port                   int    `toml:"port"`
	LocalPort              int    `toml:"local_port"`
	ClientName             string `toml:"client_name"`
	ClientVersion          string `toml:"client_version"`
	ProtocolVersion        int    `toml:"protocol_version"`
	RequestIntervalSeconds int    `toml:"request_interval_seconds"`
	FloodWaitSeconds       int    `toml:"flood_wait_seconds"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	RetryAttempts          int    `toml:"retry_attempts"`
}

// Ed2k contains configuration for the external hashing utility.
type Ed2k struct {
	Binary string `toml:"binary"`
}

// Config is the root configuration for shisho.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	AniDB   AniDB   `toml:"anidb"`
	Ed2k    Ed2k    `toml:"ed2k"`
}

// DefaultConfigPath returns the canonical config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shisho/config.toml")
}

// ExpandPath resolves ~ and environment variables in a user-supplied path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load reads the config at path (or the default location when path is empty),
// applies defaults, and validates the result. It returns the resolved path
// and whether a config file actually existed; a missing file is not an error
// since every setting has a usable default.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = defaultPath
	}

	expanded, err := expandPath(candidate)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(expanded)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return expanded, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

// EnsureDirectories creates the data and log directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the metadata cache database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "shisho.db")
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "shisho.lock")
}

// RequestInterval returns the minimum spacing between API requests.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.AniDB.RequestIntervalSeconds) * time.Second
}

// FloodWait returns the cooldown applied after a server flood reply.
func (c *Config) FloodWait() time.Duration {
	return time.Duration(c.AniDB.FloodWaitSeconds) * time.Second
}

// Timeout returns the per-datagram network timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.AniDB.TimeoutSeconds) * time.Second
}

// CreateSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
