// Package config loads settings for the game, SSH and web commands from an
// optional config file and BUGZAPPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BUGZAPPER_WEB_PORT.
const EnvPrefix = "BUGZAPPER"

// Config is the full configuration shared by all commands.
type Config struct {
	Web   WebConfig   `mapstructure:"web"`
	SSH   SSHConfig   `mapstructure:"ssh"`
	API   APIConfig   `mapstructure:"api"`
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// WebConfig configures the HTTP score server.
type WebConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	SSHDisplayHost string `mapstructure:"ssh_display_host"`
}

// SSHConfig configures the SSH game server.
type SSHConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	HostKeyPath string `mapstructure:"host_key"`
}

// APIConfig tells game clients where the score server lives.
// An empty BaseURL plays offline.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig selects the score server's storage backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // Terminal client only; empty discards
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 3000)
	v.SetDefault("web.ssh_display_host", "localhost")
	v.SetDefault("ssh.host", "::")
	v.SetDefault("ssh.port", 2222)
	v.SetDefault("ssh.host_key", ".ssh/bugzapper_ed25519")
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", ":memory:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port %d out of range", c.Web.Port))
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		errs = append(errs, fmt.Errorf("ssh.port %d out of range", c.SSH.Port))
	}
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q unknown", c.Store.Driver))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Addr returns the web server's listen address.
func (c WebConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Addr returns the SSH server's listen address.
func (c SSHConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogLevel returns the parsed log level. Load has already validated it.
func (c LogConfig) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
