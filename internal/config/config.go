// Package config loads the catalog server configuration from an HCL file.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Auth modes.
const (
	AuthModeOIDC  = "oidc"
	AuthModeLocal = "local"
)

// Config is the top-level server configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `hcl:"listen_addr,optional"`

	// LogLevel is the hclog level name (trace, debug, info, warn, error).
	LogLevel string `hcl:"log_level,optional"`

	// Database configures the storage engine.
	Database *Database `hcl:"database,block"`

	// Auth configures bearer-token verification.
	Auth *Auth `hcl:"auth,block"`
}

// Database configures the relational store.
type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver string `hcl:"driver,optional"`

	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	// Path is the sqlite database file.
	Path string `hcl:"path,optional"`
}

// Auth configures how bearer tokens are verified. In "oidc" mode ID tokens
// are verified against the issuer's published keys; in "local" mode tokens
// are HMAC-signed JWTs for development setups.
type Auth struct {
	Mode string `hcl:"mode,optional"`

	// OIDC settings.
	Issuer   string `hcl:"issuer,optional"`
	ClientID string `hcl:"client_id,optional"`

	// Local-mode HMAC secret.
	LocalSecret string `hcl:"local_secret,optional"`
}

// FromFile loads, defaults, and validates a configuration file.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database != nil && c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database != nil && c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Auth != nil && c.Auth.Mode == "" {
		c.Auth.Mode = AuthModeLocal
	}
}

// Validate checks the configuration for missing or contradictory settings.
func (c *Config) Validate() error {
	if c.Database == nil {
		return fmt.Errorf("config: database block is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("config: postgres driver requires host and dbname")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("config: sqlite driver requires path")
		}
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}

	if c.Auth == nil {
		return fmt.Errorf("config: auth block is required")
	}
	switch c.Auth.Mode {
	case AuthModeOIDC:
		if c.Auth.Issuer == "" || c.Auth.ClientID == "" {
			return fmt.Errorf("config: oidc auth requires issuer and client_id")
		}
	case AuthModeLocal:
		if c.Auth.LocalSecret == "" {
			return fmt.Errorf("config: local auth requires local_secret")
		}
	default:
		return fmt.Errorf("config: unsupported auth mode %q", c.Auth.Mode)
	}

	return nil
}
