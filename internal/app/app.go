// Package app wires configuration, logging, the identity stores and the
// account manager into one value used by the identityctl commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/identitystore/internal/config"
	"github.com/dmitrijs2005/identitystore/internal/filex"
	"github.com/dmitrijs2005/identitystore/internal/identity/manager"
	"github.com/dmitrijs2005/identitystore/internal/identity/stores"
	"github.com/dmitrijs2005/identitystore/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	stores  *stores.Stores
	manager *manager.Manager

	// usersPath and rolesPath are set for the file backend only.
	usersPath string
	rolesPath string
}

// New opens the stores selected by c and builds a manager over them. Logs
// go to logOut.
func New(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logOut, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	opts := []stores.Option{stores.WithLogger(logger)}
	if c.Cache {
		opts = append(opts, stores.WithCache())
	}
	if c.Watch {
		opts = append(opts, stores.WithWatch())
	}

	a := &App{config: c, logger: logger}

	switch c.Backend {
	case config.BackendFile:
		dir, err := filex.EnsureDir(c.DataDir)
		if err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
		a.usersPath = filepath.Join(dir, c.UsersItem)
		a.rolesPath = filepath.Join(dir, c.RolesItem)
		a.stores, err = stores.NewFileStores(a.usersPath, a.rolesPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("stores init error: %w", err)
		}
	case config.BackendBlob:
		a.stores, err = stores.NewStoresFromConnectionString(ctx, c.ConnectionString, c.UsersItem, c.RolesItem, opts...)
		if err != nil {
			return nil, fmt.Errorf("stores init error: %w", err)
		}
	}

	mo := manager.DefaultOptions()
	mo.SecretKey = []byte(c.SecretKey)
	mo.AccessTokenValidity = c.AccessTokenValidityDuration
	mo.RefreshTokenValidity = c.RefreshTokenValidityDuration
	mo.MaxFailedAccessAttempts = c.MaxFailedAccessAttempts
	mo.LockoutDuration = c.LockoutDuration

	a.manager = manager.New(a.stores.Users, a.stores.Roles, mo, logger)

	logger.Debug(ctx, "app initialized", "backend", c.Backend, "cache", c.Cache, "watch", c.Watch)
	return a, nil
}

func (a *App) Config() *config.Config    { return a.config }
func (a *App) Logger() logging.Logger    { return a.logger }
func (a *App) Manager() *manager.Manager { return a.manager }
func (a *App) Stores() *stores.Stores    { return a.stores }

// Close releases the stores and flushes the logger when it buffers.
func (a *App) Close() error {
	var errs []error
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	if s, ok := a.logger.(interface{ Sync() error }); ok {
		// zap returns EINVAL when syncing a terminal; nothing to do about it.
		_ = s.Sync()
	}
	return errors.Join(errs...)
}
