package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/identitystore/internal/common"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestApplyFlags_OnlyExplicit(t *testing.T) {
	fs := newFlagSet(t,
		"-b", "blob",
		"--connection-string", "sqlite://path=identity.db",
		"--cache",
		"-s", "secret",
		"--access-token-ttl", "2m",
		"--max-failed-attempts", "7",
		"--log-level", "debug",
	)

	cfg := Default()
	cfg.DataDir = "from-file"
	require.NoError(t, cfg.ApplyFlags(fs))

	want := Default()
	want.DataDir = "from-file"
	want.Backend = BackendBlob
	want.ConnectionString = "sqlite://path=identity.db"
	want.Cache = true
	want.SecretKey = "secret"
	want.AccessTokenValidityDuration = 2 * time.Minute
	want.MaxFailedAccessAttempts = 7
	want.LogLevel = "debug"

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "data_dir: file-dir\nsecret_key: file-secret\nlockout_duration: 1h\n")

	fs := newFlagSet(t, "--config", path, "--secret-key", "flag-secret")
	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "file-dir", cfg.DataDir, "file overrides default")
	assert.Equal(t, "flag-secret", cfg.SecretKey, "flag overrides file")
	assert.Equal(t, time.Hour, cfg.LockoutDuration)
	assert.Equal(t, "users.json", cfg.UsersItem, "default survives")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(newFlagSet(t, "--config", "/nonexistent/cfg.json"))
	require.ErrorContains(t, err, "read config")

	_, err = Load(newFlagSet(t, "--backend", "ftp"))
	require.ErrorIs(t, err, common.ErrorValidation)
}
