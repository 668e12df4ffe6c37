// Package config handles configuration for identityctl: defaults, an
// optional JSON, TOML or YAML file, and command-line flags, applied in that
// order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
)

// Storage backends.
const (
	// BackendFile keeps each collection in a JSON file under DataDir.
	BackendFile = "file"
	// BackendBlob keeps each collection as an item of the blob storage named
	// by ConnectionString.
	BackendBlob = "blob"
)

// Config holds runtime settings.
//
// Fields:
//   - Backend: "file" or "blob".
//   - DataDir: directory for the file backend.
//   - UsersItem / RolesItem: file names or blob item ids of the collections.
//   - ConnectionString: blob backend, e.g. "s3://bucket=vault;region=us-east-1".
//   - Cache: keep collections in memory between operations.
//   - Watch: reload cached file collections changed by other processes.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - MaxFailedAccessAttempts / LockoutDuration: password lockout policy.
//   - LogFormat / LogLevel: see logging.New.
type Config struct {
	Backend          string
	DataDir          string
	UsersItem        string
	RolesItem        string
	ConnectionString string
	Cache            bool
	Watch            bool

	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	MaxFailedAccessAttempts      int
	LockoutDuration              time.Duration

	LogFormat string
	LogLevel  string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Backend = BackendFile
	c.DataDir = "data"
	c.UsersItem = common.DefaultUsersItem
	c.RolesItem = common.DefaultRolesItem
	c.ConnectionString = "inmemory://"
	c.Cache = false
	c.Watch = false
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.MaxFailedAccessAttempts = 5
	c.LockoutDuration = 5 * time.Minute
	c.LogFormat = logging.FormatText
	c.LogLevel = "warn"
}

// Default returns a Config with LoadDefaults applied.
func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data dir is required for the file backend", common.ErrorValidation)
		}
	case BackendBlob:
		if c.ConnectionString == "" {
			return fmt.Errorf("%w: connection string is required for the blob backend", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", common.ErrorValidation, c.Backend)
	}

	if c.UsersItem == "" || c.RolesItem == "" {
		return fmt.Errorf("%w: users and roles items are required", common.ErrorValidation)
	}
	if c.UsersItem == c.RolesItem {
		return fmt.Errorf("%w: users and roles must be stored apart", common.ErrorValidation)
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		return fmt.Errorf("%w: token validity must be positive", common.ErrorValidation)
	}
	if c.MaxFailedAccessAttempts < 0 || c.LockoutDuration < 0 {
		return fmt.Errorf("%w: lockout settings must not be negative", common.ErrorValidation)
	}
	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatText, logging.FormatZap:
	default:
		return fmt.Errorf("%w: unknown log format %q", common.ErrorValidation, c.LogFormat)
	}
	return nil
}
