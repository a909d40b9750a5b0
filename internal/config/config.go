// Package config loads the service configuration from defaults, an optional
// .env file, an optional YAML file and the environment, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// DefaultSecretKey is the development secret shipped in the defaults. It is
// refused outside debug mode.
const DefaultSecretKey = "dev_key_for_testing"

// Config is the root configuration of the service. Every key can be
// overridden by the environment variable of the same name in upper case,
// e.g. NEO4J_URI.
type Config struct {
	Neo4jURI      string `mapstructure:"neo4j_uri"`
	Neo4jUser     string `mapstructure:"neo4j_user"`
	Neo4jPassword string `mapstructure:"neo4j_password"`
	Neo4jDatabase string `mapstructure:"neo4j_database"`

	Debug     bool   `mapstructure:"debug"`
	SecretKey string `mapstructure:"secret_key"`

	ServerAddress   string        `mapstructure:"server_address"`
	ReadTimeout     time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"server_write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"server_shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// LogFile enables a rotating file sink when non-empty.
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	IDFormat           string   `mapstructure:"id_format"`
	MetricsEnabled     bool     `mapstructure:"metrics_enabled"`
}

// SetDefaults registers the default value of every key. Keys must be known
// to viper for AutomaticEnv to reach them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("neo4j_uri", "bolt://localhost:7687")
	v.SetDefault("neo4j_user", "neo4j")
	v.SetDefault("neo4j_password", "password")
	v.SetDefault("neo4j_database", "neo4j")

	v.SetDefault("debug", true)
	v.SetDefault("secret_key", DefaultSecretKey)

	v.SetDefault("server_address", ":5000")
	v.SetDefault("server_read_timeout", 15*time.Second)
	v.SetDefault("server_write_timeout", 15*time.Second)
	v.SetDefault("server_shutdown_timeout", 10*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)

	v.SetDefault("cors_allowed_origins", []string{"*"})
	v.SetDefault("id_format", "uuid")
	v.SetDefault("metrics_enabled", true)
}

// NewViper builds a viper instance with defaults, the optional dotenv file,
// the optional YAML file and the environment. A missing dotenv file is
// ignored; a missing configFile is an error.
func NewViper(dotenvFile, configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if dotenvFile != "" {
		if _, err := os.Stat(dotenvFile); err == nil {
			v.SetConfigFile(dotenvFile)
			v.SetConfigType("env")
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("error reading %s: %w", dotenvFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	return v, nil
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load is NewViper followed by FromViper.
func Load(dotenvFile, configFile string) (*Config, error) {
	v, err := NewViper(dotenvFile, configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate checks the values that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return errors.New("neo4j_uri is required")
	}
	if c.ServerAddress == "" {
		return errors.New("server_address is required")
	}
	switch c.IDFormat {
	case "uuid", "ulid":
	default:
		return fmt.Errorf("id_format must be uuid or ulid, got %q", c.IDFormat)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if !c.Debug && (c.SecretKey == "" || c.SecretKey == DefaultSecretKey) {
		return errors.New("secret_key must be set when debug is disabled")
	}
	return nil
}
