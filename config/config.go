package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port   int    `toml:"port"`
	Domain string `toml:"domain"` // mail domain, e.g. "mailme.com"
}

type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type BlacklistConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	TimeoutMs int    `toml:"timeout_ms"` // covers dial, write and read of a single request
}

type LimitsConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Storage   StorageConfig   `toml:"storage"`
	Blacklist BlacklistConfig `toml:"blacklist"`
	Limits    LimitsConfig    `toml:"limits"`
	LogLevel  string          `toml:"log_level"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Server.Domain = "mailme.com"
	config.Auth.TokenTTLHours = 24
	config.Storage.DataDir = "./data"
	config.Blacklist.Port = 5555
	config.Blacklist.TimeoutMs = 5000
	config.Limits.Requests = 100
	config.Limits.WindowSeconds = 60
	config.LogLevel = "info"

	// Load config file
	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return &config, nil
}

// Validate checks the loaded configuration for required fields
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.Domain == "" {
		return fmt.Errorf("server.domain is required")
	}
	if c.Blacklist.Host == "" {
		return fmt.Errorf("blacklist.host is required")
	}
	if c.Blacklist.TimeoutMs <= 0 {
		return fmt.Errorf("blacklist.timeout_ms must be positive")
	}
	return nil
}

// BlacklistTimeout returns the per-request deadline for the blacklist client
func (c *Config) BlacklistTimeout() time.Duration {
	return time.Duration(c.Blacklist.TimeoutMs) * time.Millisecond
}

// BlacklistAddr returns the host:port of the blacklist server
func (c *Config) BlacklistAddr() string {
	return fmt.Sprintf("%s:%d", c.Blacklist.Host, c.Blacklist.Port)
}

// TokenTTL returns the lifetime of issued JWTs
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
