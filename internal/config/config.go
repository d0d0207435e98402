package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultQuitTimes      = 3
	DefaultMessageTimeout = 5
	DefaultSyntax         = "number"
	maxRecentFiles        = 10
)

// SSH holds defaults for remote targets.
type SSH struct {
	User                  string `toml:"user,omitempty"`
	IdentityFile          string `toml:"identity_file,omitempty"`
	KnownHosts            string `toml:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `toml:"insecure_ignore_host_key"`
}

// Config holds application configuration.
type Config struct {
	QuitTimes             int      `toml:"quit_times"`
	MessageTimeoutSeconds int      `toml:"message_timeout_seconds"`
	Syntax                string   `toml:"syntax"`
	Welcome               bool     `toml:"welcome"`
	SSH                   SSH      `toml:"ssh"`
	RecentFiles           []string `toml:"recent_files"`

	readOnly bool
}

// ErrReadOnly is returned by SaveTo for a config whose file did not parse.
// Writing it back would replace the user's file with defaults.
var ErrReadOnly = errors.New("config file has errors; not overwriting it")

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		QuitTimes:             DefaultQuitTimes,
		MessageTimeoutSeconds: DefaultMessageTimeout,
		Syntax:                DefaultSyntax,
		Welcome:               true,
	}
}

// DefaultPath returns ~/.config/scpedit/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scpedit", "config.toml")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the config at path. A missing or unparsable file yields
// the defaults; only other read errors are returned. The defaults loaded in
// place of an unparsable file are read-only.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] parse %s: %v (using defaults)", path, err)
		cfg = Default()
		cfg.readOnly = true
		return cfg, nil
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.QuitTimes < 0 {
		c.QuitTimes = DefaultQuitTimes
	}
	if c.MessageTimeoutSeconds <= 0 {
		c.MessageTimeoutSeconds = DefaultMessageTimeout
	}
	if c.Syntax == "" {
		c.Syntax = DefaultSyntax
	}
	if len(c.RecentFiles) > maxRecentFiles {
		c.RecentFiles = c.RecentFiles[:maxRecentFiles]
	}
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveTo(cfg, DefaultPath())
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(cfg *Config, path string) error {
	if cfg.readOnly {
		return fmt.Errorf("save %s: %w", path, ErrReadOnly)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	FixOwnership(path)
	return nil
}

// ReadOnly reports whether the config stands in for a file that failed to
// parse.
func (c *Config) ReadOnly() bool { return c.readOnly }

// MessageTimeout is how long a status message stays visible.
func (c *Config) MessageTimeout() time.Duration {
	return time.Duration(c.MessageTimeoutSeconds) * time.Second
}

// KnownHostsPath returns the known_hosts file to verify remote hosts
// against, ~/.ssh/known_hosts unless configured.
func (c *Config) KnownHostsPath() string {
	home, _ := os.UserHomeDir()
	if c.SSH.KnownHosts != "" {
		return expandTilde(c.SSH.KnownHosts, home)
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

// AddRecent moves file to the front of the recent list.
func (c *Config) AddRecent(file string) {
	if file == "" {
		return
	}
	if i := slices.Index(c.RecentFiles, file); i >= 0 {
		c.RecentFiles = slices.Delete(c.RecentFiles, i, i+1)
	}
	c.RecentFiles = append([]string{file}, c.RecentFiles...)
	if len(c.RecentFiles) > maxRecentFiles {
		c.RecentFiles = c.RecentFiles[:maxRecentFiles]
	}
}
