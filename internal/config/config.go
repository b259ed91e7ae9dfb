// Package config loads fitlog settings from config.yaml with FITLOG_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/fitlog/internal/constants"
	"github.com/julianstephens/fitlog/internal/keyring"
	"github.com/julianstephens/fitlog/internal/remote/postgres"
	"github.com/julianstephens/fitlog/internal/xp"
)

// ErrNoConnection is returned when no remote connection string is
// configured anywhere.
var ErrNoConnection = errors.New("no remote connection configured")

type Config struct {
	UserID       string   `yaml:"user_id"`
	DatabasePath string   `yaml:"database_path"`
	Remote       Remote   `yaml:"remote"`
	Sync         Sync     `yaml:"sync"`
	XP           xp.Rates `yaml:"xp"`
	Log          Log      `yaml:"log"`
}

type Remote struct {
	Connection     string        `yaml:"connection,omitempty"`
	KeyringAccount string        `yaml:"keyring_account,omitempty"`
	Timeout        time.Duration `yaml:"timeout"`
	ProbeAddress   string        `yaml:"probe_address,omitempty"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
}

type Sync struct {
	WatchInterval time.Duration `yaml:"watch_interval"`
	BackoffBase   time.Duration `yaml:"backoff_base"`
	BackoffMax    time.Duration `yaml:"backoff_max"`
}

type Log struct {
	Debug bool `yaml:"debug"`
}

// Default returns the settings used when no file exists. The database
// lives next to the config file.
func Default(configDir string) *Config {
	return &Config{
		DatabasePath: filepath.Join(configDir, constants.DefaultDBFile),
		Remote: Remote{
			Timeout:      constants.DefaultRemoteTimeout,
			ProbeTimeout: constants.DefaultProbeTimeout,
		},
		Sync: Sync{
			WatchInterval: constants.DefaultWatchInterval,
			BackoffBase:   constants.DefaultBackoffBase,
			BackoffMax:    constants.DefaultBackoffMax,
		},
		XP: xp.DefaultRates(),
	}
}

// Load reads configDir/config.yaml over the defaults and then applies the
// environment. A missing file is not an error.
func Load(configDir string) (*Config, error) {
	cfg := Default(configDir)

	f, err := os.Open(Path(configDir))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config: %w", err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.DatabasePath = ExpandHome(cfg.DatabasePath)
	return cfg, cfg.Validate()
}

// Save writes cfg to configDir/config.yaml.
func (c *Config) Save(configDir string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(Path(configDir), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path is the config file inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, constants.DefaultConfigFile)
}

func (c *Config) applyEnv() error {
	c.UserID = getEnv("FITLOG_USER_ID", c.UserID)
	c.DatabasePath = getEnv("FITLOG_DATABASE_PATH", c.DatabasePath)
	c.Remote.ProbeAddress = getEnv("FITLOG_PROBE_ADDRESS", c.Remote.ProbeAddress)
	c.Remote.KeyringAccount = getEnv("FITLOG_KEYRING_ACCOUNT", c.Remote.KeyringAccount)

	if v := os.Getenv("FITLOG_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FITLOG_REMOTE_TIMEOUT: %w", err)
		}
		c.Remote.Timeout = d
	}
	if v := os.Getenv("FITLOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FITLOG_DEBUG: %w", err)
		}
		c.Log.Debug = debug
	}
	return nil
}

// Validate rejects settings the sync engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path cannot be empty"))
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, errors.New("remote.timeout cannot be negative"))
	}
	if c.Sync.WatchInterval <= 0 {
		errs = append(errs, errors.New("sync.watch_interval must be positive"))
	}
	if c.Sync.BackoffBase <= 0 {
		errs = append(errs, errors.New("sync.backoff_base must be positive"))
	}
	if c.Sync.BackoffMax > 0 && c.Sync.BackoffBase > c.Sync.BackoffMax {
		errs = append(errs, errors.New("sync.backoff_base cannot exceed sync.backoff_max"))
	}
	if c.XP.MealLogged < 0 || c.XP.CalorieBurned < 0 || c.XP.GlassWater < 0 || c.XP.MinuteSleep < 0 {
		errs = append(errs, errors.New("xp rates cannot be negative"))
	}
	if err := keyring.ValidateAccount(c.Remote.KeyringAccount); err != nil {
		errs = append(errs, fmt.Errorf("remote.keyring_account: %w", err))
	}
	if c.Remote.Connection != "" {
		if err := postgres.ValidateConnString(c.Remote.Connection); err != nil {
			errs = append(errs, fmt.Errorf("remote.connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Source names where a connection string came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
)

// KeyringLookup is swapped out in tests.
var KeyringLookup = keyring.Get

// ResolveConnection picks the remote connection string from the flag, then
// FITLOG_REMOTE_URL, then the config file, then the OS keyring entry named
// by remote.keyring_account. Only the keyring may hold a password.
func (c *Config) ResolveConnection(flag string) (string, Source, error) {
	candidates := []struct {
		value  string
		source Source
	}{
		{flag, SourceFlag},
		{os.Getenv("FITLOG_REMOTE_URL"), SourceEnv},
		{c.Remote.Connection, SourceConfig},
	}
	for _, cand := range candidates {
		if cand.value == "" {
			continue
		}
		if err := postgres.ValidateConnString(cand.value); err != nil {
			return "", cand.source, fmt.Errorf("connection string from %s: %w", cand.source, err)
		}
		return cand.value, cand.source, nil
	}

	connStr, err := KeyringLookup(keyring.Account(c.Remote.KeyringAccount))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", "", ErrNoConnection
	}
	if err != nil {
		return "", SourceKeyring, err
	}
	return connStr, SourceKeyring, nil
}

// ProbeTarget is the host:port the connectivity probe dials. An explicit
// probe_address wins; otherwise it is derived from connStr.
func (c *Config) ProbeTarget(connStr string) string {
	if c.Remote.ProbeAddress != "" {
		return c.Remote.ProbeAddress
	}
	return HostPort(connStr)
}

// HostPort extracts host:port from a PostgreSQL URI or DSN, defaulting
// the port to 5432. It returns "" for unix sockets and unparsable input.
func HostPort(connStr string) string {
	host, port := "", "5432"
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return ""
		}
		host = u.Hostname()
		if p := u.Port(); p != "" {
			port = p
		}
	} else {
		for _, part := range strings.Fields(connStr) {
			k, v, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}
			switch strings.ToLower(k) {
			case "host":
				host = v
			case "port":
				port = v
			}
		}
	}
	if host == "" || strings.HasPrefix(host, "/") {
		return ""
	}
	return net.JoinHostPort(host, port)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
