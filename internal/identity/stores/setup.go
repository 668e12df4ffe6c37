package stores

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/filex"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
	"github.com/dmitrijs2005/identitystore/internal/storage"
	"github.com/dmitrijs2005/identitystore/internal/storage/blob"
)

// Stores bundles a user store and a role store sharing one backend.
type Stores struct {
	Users *Users
	Roles *Roles
	// Blob is the backend of blob stores and nil for file stores.
	Blob blob.Storage

	closers []func() error
}

// Close stops file watchers and releases a backend opened by the constructor.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewFileStores keeps users and roles in two local JSON files. Empty names
// fall back to users.json and roles.json in the working directory.
func NewFileStores(usersFile, rolesFile string, opts ...Option) (*Stores, error) {
	if usersFile == "" {
		usersFile = common.DefaultUsersItem
	}
	if rolesFile == "" {
		rolesFile = common.DefaultRolesItem
	}

	o := buildOptions(opts)
	userProvider := storage.NewFileProvider[models.User](usersFile, o.log)
	roleProvider := storage.NewFileProvider[models.Role](rolesFile, o.log)

	st := &Stores{
		Users: NewUsers(userProvider, opts...),
		Roles: NewRoles(roleProvider, opts...),
	}

	if !o.watch {
		return st, nil
	}

	for _, w := range []struct {
		path       string
		invalidate func()
	}{
		{usersFile, st.Users.Invalidate},
		{rolesFile, st.Roles.Invalidate},
	} {
		if _, err := filex.EnsureDir(filepath.Dir(w.path)); err != nil {
			_ = st.Close()
			return nil, err
		}
		watcher, err := storage.NewWatcher(w.path, w.invalidate, o.log)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		if err := watcher.Start(context.Background()); err != nil {
			_ = watcher.Stop()
			_ = st.Close()
			return nil, err
		}
		st.closers = append(st.closers, watcher.Stop)
	}

	return st, nil
}

// NewBlobStores keeps users and roles as two items of s. The caller keeps
// ownership of s.
func NewBlobStores(s blob.Storage, usersItemID, rolesItemID string, opts ...Option) *Stores {
	if usersItemID == "" {
		usersItemID = common.DefaultUsersItem
	}
	if rolesItemID == "" {
		rolesItemID = common.DefaultRolesItem
	}

	o := buildOptions(opts)
	return &Stores{
		Users: NewUsers(storage.NewBlobProvider[models.User](s, usersItemID, o.log), opts...),
		Roles: NewRoles(storage.NewBlobProvider[models.Role](s, rolesItemID, o.log), opts...),
		Blob:  s,
	}
}

// NewStoresFromConnectionString opens the blob backend named by cs (see
// blob.FromConnectionString) and closes it on Stores.Close.
func NewStoresFromConnectionString(ctx context.Context, cs, usersItemID, rolesItemID string, opts ...Option) (*Stores, error) {
	s, err := blob.FromConnectionString(ctx, cs)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	st := NewBlobStores(s, usersItemID, rolesItemID, opts...)
	st.closers = append(st.closers, s.Close)
	return st, nil
}
