package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/identitystore/internal/timex"
)

// FileConfig is the on-disk shape of a config file. Unset fields leave the
// current value alone. Durations accept strings such as "15m"; JSON also
// accepts integer nanoseconds.
type FileConfig struct {
	Backend          *string `json:"backend" toml:"backend" yaml:"backend"`
	DataDir          *string `json:"data_dir" toml:"data_dir" yaml:"data_dir"`
	UsersItem        *string `json:"users_item" toml:"users_item" yaml:"users_item"`
	RolesItem        *string `json:"roles_item" toml:"roles_item" yaml:"roles_item"`
	ConnectionString *string `json:"connection_string" toml:"connection_string" yaml:"connection_string"`
	Cache            *bool   `json:"cache" toml:"cache" yaml:"cache"`
	Watch            *bool   `json:"watch" toml:"watch" yaml:"watch"`

	SecretKey                    *string         `json:"secret_key" toml:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	MaxFailedAccessAttempts      *int            `json:"max_failed_access_attempts" toml:"max_failed_access_attempts" yaml:"max_failed_access_attempts"`
	LockoutDuration              *timex.Duration `json:"lockout_duration" toml:"lockout_duration" yaml:"lockout_duration"`

	LogFormat *string `json:"log_format" toml:"log_format" yaml:"log_format"`
	LogLevel  *string `json:"log_level" toml:"log_level" yaml:"log_level"`
}

// LoadFile overlays values from path. The format follows the extension:
// .json, .toml, .yaml or .yml.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := &FileConfig{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, fc)
	case ".toml":
		err = toml.Unmarshal(data, fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.apply(fc)
	return nil
}

func (c *Config) apply(fc *FileConfig) {
	setIf(&c.Backend, fc.Backend)
	setIf(&c.DataDir, fc.DataDir)
	setIf(&c.UsersItem, fc.UsersItem)
	setIf(&c.RolesItem, fc.RolesItem)
	setIf(&c.ConnectionString, fc.ConnectionString)
	setIf(&c.Cache, fc.Cache)
	setIf(&c.Watch, fc.Watch)
	setIf(&c.SecretKey, fc.SecretKey)
	setIf(&c.MaxFailedAccessAttempts, fc.MaxFailedAccessAttempts)
	setIf(&c.LogFormat, fc.LogFormat)
	setIf(&c.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration != nil {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration != nil {
		c.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.LockoutDuration != nil {
		c.LockoutDuration = fc.LockoutDuration.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
