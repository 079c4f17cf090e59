package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nhle/mailacct/internal/account"
)

// envPrefix namespaces environment overrides, e.g. MAILACCT_IMAP_PASS.
const envPrefix = "MAILACCT"

// StoreConfig locates the account registry database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	// Level is a logrus level name ("debug", "info", "warn", ...).
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration. The per-protocol
// credential defaults live at the top level of the file:
//
//	imap:
//	  user: me@example.com
//	  pass: keyring:mailacct-work
//	  oauth_refresh_command: oauth2l fetch --scope mail
type AppConfig struct {
	IMAP  account.ProtocolDefaults `mapstructure:"imap" yaml:"imap"`
	POP   account.ProtocolDefaults `mapstructure:"pop" yaml:"pop"`
	SMTP  account.ProtocolDefaults `mapstructure:"smtp" yaml:"smtp"`
	NNTP  account.ProtocolDefaults `mapstructure:"nntp" yaml:"nntp"`
	Store StoreConfig              `mapstructure:"store" yaml:"store"`
	Log   LogConfig                `mapstructure:"log" yaml:"log"`
}

// Defaults returns the credential snapshot handed to the resolver.
func (c *AppConfig) Defaults() account.Defaults {
	return account.Defaults{IMAP: c.IMAP, POP: c.POP, SMTP: c.SMTP, NNTP: c.NNTP}
}

// ConfigDir returns ~/.config/mailacct, or the working directory when the
// home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailacct")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailacct/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Store: StoreConfig{Path: filepath.Join(ConfigDir(), "accounts.db")},
		Log:   LogConfig{Level: "info"},
	}
}

// protocolKeys are registered with viper so environment overrides apply
// even when the file does not mention them.
var protocolKeys = []string{"user", "login", "pass", "oauth_refresh_command"}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultAppConfig()
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("log.level", def.Log.Level)
	for _, proto := range []string{"imap", "pop", "smtp", "nntp"} {
		for _, key := range protocolKeys {
			v.SetDefault(proto+"."+key, "")
		}
	}
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides still
// apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("imap", cfg.IMAP)
	v.Set("pop", cfg.POP)
	v.Set("smtp", cfg.SMTP)
	v.Set("nntp", cfg.NNTP)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
