package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultTokenTTL is the access token lifetime used when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Config represents the application configuration loaded from a TOML file.
//
// Any field can be overridden with its SETLIST_* environment variable after the file is read.
type Config struct {
	Auth     AuthConfig     `toml:"auth" envPrefix:"SETLIST_AUTH_"`
	Database DatabaseConfig `toml:"database" envPrefix:"SETLIST_DATABASE_"`
	Server   ServerConfig   `toml:"server" envPrefix:"SETLIST_SERVER_"`
	Client   ClientConfig   `toml:"client" envPrefix:"SETLIST_CLIENT_"`
}

// AuthConfig contains password hashing and token signing settings.
type AuthConfig struct {
	SecretKey  string `toml:"secret_key" env:"SECRET_KEY"`
	TokenTTL   string `toml:"token_ttl" env:"TOKEN_TTL"`
	BcryptCost int    `toml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string  `toml:"host" env:"HOST"`
	Port            int     `toml:"port" env:"PORT"`
	ReadTimeout     string  `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    string  `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	AuthRateLimit   float64 `toml:"auth_rate_limit" env:"AUTH_RATE_LIMIT"`
	AuthRateBurst   int     `toml:"auth_rate_burst" env:"AUTH_RATE_BURST"`
	GlobalRateLimit float64 `toml:"global_rate_limit" env:"GLOBAL_RATE_LIMIT"`
}

// ClientConfig contains settings for the CLI API client.
type ClientConfig struct {
	BaseURL string `toml:"base_url" env:"BASE_URL"`
}

// TTL parses the configured token lifetime, falling back to [DefaultTokenTTL] when unset.
func (c AuthConfig) TTL() (time.Duration, error) {
	if c.TokenTTL == "" {
		return DefaultTokenTTL, nil
	}

	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: token_ttl %q: %v", ErrInvalidConfig, c.TokenTTL, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	return ttl, nil
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeouts returns the parsed read and write timeouts. Empty values mean no timeout.
func (c ServerConfig) Timeouts() (read, write time.Duration, err error) {
	if c.ReadTimeout != "" {
		if read, err = time.ParseDuration(c.ReadTimeout); err != nil {
			return 0, 0, fmt.Errorf("%w: read_timeout: %v", ErrInvalidConfig, err)
		}
	}
	if c.WriteTimeout != "" {
		if write, err = time.ParseDuration(c.WriteTimeout); err != nil {
			return 0, 0, fmt.Errorf("%w: write_timeout: %v", ErrInvalidConfig, err)
		}
	}
	return read, write, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("%w: auth.secret_key is required", ErrInvalidConfig)
	}
	if _, err := c.Auth.TTL(); err != nil {
		return err
	}
	if _, _, err := c.Server.Timeouts(); err != nil {
		return err
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnv overrides config fields with any SETLIST_* environment variables that are set.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: environment: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
