// Package settings loads the mcpreg configuration file.
//
// A config file holds registry settings alongside the server definitions
// used by the original desktop front-end:
//
//	handshake_timeout: 30s
//	log_level: info
//	mcpServers:
//	  bmi:
//	    command: bmi-server
//	    args: ["--verbose"]
//	    env: {BMI_UNITS: metric}
//
// Settings go through viper and can be overridden with MCPREG_* environment
// variables. Server definitions are decoded separately with their key case
// intact, since viper folds keys to lower case and environment variable
// names are case sensitive.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	"github.com/wagiedev/mcp-registry-go/internal/mcp"
	"github.com/wagiedev/mcp-registry-go/internal/tracing"
)

// EnvPrefix prefixes environment variable overrides, e.g. MCPREG_LOG_LEVEL.
const EnvPrefix = "MCPREG"

// Config is the resolved mcpreg configuration.
type Config struct {
	HandshakeTimeout time.Duration  `mapstructure:"handshake_timeout"`
	ShutdownTimeout  time.Duration  `mapstructure:"shutdown_timeout"`
	LogLevel         string         `mapstructure:"log_level"`
	Tracing          tracing.Config `mapstructure:"tracing"`

	// Servers holds the "mcpServers" section keyed by server name.
	Servers map[string]mcp.StdioServerConfig `mapstructure:"-"`

	// Path is the config file that was read, empty if none was found.
	Path string `mapstructure:"-"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() Config {
	return Config{
		HandshakeTimeout: config.DefaultHandshakeTimeout,
		ShutdownTimeout:  config.DefaultShutdownTimeout,
		LogLevel:         "warn",
		Tracing:          tracing.DefaultConfig(),
		Servers:          map[string]mcp.StdioServerConfig{},
	}
}

// NewViper returns a viper instance with defaults and environment overrides
// registered for every setting.
func NewViper() *viper.Viper {
	defaults := Defaults()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("handshake_timeout", defaults.HandshakeTimeout)
	v.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	return v
}

// Load reads the configuration through v.
//
// An explicit path must exist. Without one, mcpreg.yaml (or .json) is looked
// up in the working directory and then in ~/.config/mcpreg; finding none is
// not an error and yields the defaults with no servers.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mcpreg")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mcpreg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Path = v.ConfigFileUsed()
	if cfg.Path == "" {
		return cfg, nil
	}

	servers, err := LoadServers(cfg.Path)
	if err != nil {
		return Config{}, err
	}

	cfg.Servers = servers

	return cfg, nil
}

// Options converts the settings into registry options.
func (c Config) Options() *config.Options {
	return &config.Options{
		HandshakeTimeout: c.HandshakeTimeout,
		ShutdownTimeout:  c.ShutdownTimeout,
	}
}

type serversFile struct {
	MCPServers map[string]mcp.StdioServerConfig `yaml:"mcpServers"`
}

// LoadServers reads the "mcpServers" section of a YAML or JSON file.
func LoadServers(path string) (map[string]mcp.StdioServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading servers: %w", err)
	}

	servers, err := ParseServers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return servers, nil
}

// ParseServers decodes the "mcpServers" section of a YAML or JSON document.
// Names and environment keys keep their case.
func ParseServers(data []byte) (map[string]mcp.StdioServerConfig, error) {
	var file serversFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing mcpServers: %w", err)
	}

	if file.MCPServers == nil {
		return map[string]mcp.StdioServerConfig{}, nil
	}

	return file.MCPServers, nil
}
