package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig           = "config"
	FlagBackend          = "backend"
	FlagDataDir          = "data-dir"
	FlagUsersItem        = "users-item"
	FlagRolesItem        = "roles-item"
	FlagConnectionString = "connection-string"
	FlagCache            = "cache"
	FlagWatch            = "watch"
	FlagSecretKey        = "secret-key"
	FlagAccessTTL        = "access-token-ttl"
	FlagRefreshTTL       = "refresh-token-ttl"
	FlagMaxFailed        = "max-failed-attempts"
	FlagLockout          = "lockout-duration"
	FlagLogFormat        = "log-format"
	FlagLogLevel         = "log-level"
)

// RegisterFlags defines every config flag on fs with the defaults as
// default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP(FlagConfig, "c", "", "config file (.json, .toml, .yaml)")
	fs.StringP(FlagBackend, "b", d.Backend, "storage backend: file or blob")
	fs.StringP(FlagDataDir, "d", d.DataDir, "data directory for the file backend")
	fs.String(FlagUsersItem, d.UsersItem, "users collection file name or blob item id")
	fs.String(FlagRolesItem, d.RolesItem, "roles collection file name or blob item id")
	fs.String(FlagConnectionString, d.ConnectionString, "blob storage connection string (inmemory://, disk://path=..., s3://bucket=..., postgres://..., sqlite://path=...)")
	fs.Bool(FlagCache, d.Cache, "keep collections in memory between operations")
	fs.Bool(FlagWatch, d.Watch, "reload file collections changed by other processes")
	fs.StringP(FlagSecretKey, "s", d.SecretKey, "HMAC secret for access tokens")
	fs.Duration(FlagAccessTTL, d.AccessTokenValidityDuration, "access token validity")
	fs.Duration(FlagRefreshTTL, d.RefreshTokenValidityDuration, "refresh token validity")
	fs.Int(FlagMaxFailed, d.MaxFailedAccessAttempts, "failed password attempts before lockout")
	fs.Duration(FlagLockout, d.LockoutDuration, "lockout duration")
	fs.String(FlagLogFormat, d.LogFormat, "log format: json, text or zap")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
}

// ApplyFlags copies every flag that was set explicitly on the command line.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagBackend:
			c.Backend, err = fs.GetString(f.Name)
		case FlagDataDir:
			c.DataDir, err = fs.GetString(f.Name)
		case FlagUsersItem:
			c.UsersItem, err = fs.GetString(f.Name)
		case FlagRolesItem:
			c.RolesItem, err = fs.GetString(f.Name)
		case FlagConnectionString:
			c.ConnectionString, err = fs.GetString(f.Name)
		case FlagCache:
			c.Cache, err = fs.GetBool(f.Name)
		case FlagWatch:
			c.Watch, err = fs.GetBool(f.Name)
		case FlagSecretKey:
			c.SecretKey, err = fs.GetString(f.Name)
		case FlagAccessTTL:
			c.AccessTokenValidityDuration, err = fs.GetDuration(f.Name)
		case FlagRefreshTTL:
			c.RefreshTokenValidityDuration, err = fs.GetDuration(f.Name)
		case FlagMaxFailed:
			c.MaxFailedAccessAttempts, err = fs.GetInt(f.Name)
		case FlagLockout:
			c.LockoutDuration, err = fs.GetDuration(f.Name)
		case FlagLogFormat:
			c.LogFormat, err = fs.GetString(f.Name)
		case FlagLogLevel:
			c.LogLevel, err = fs.GetString(f.Name)
		}
	})
	return err
}

// Load builds a Config from defaults, then the file named by --config,
// then explicitly set flags, and validates the result.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path, _ := fs.GetString(FlagConfig); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
