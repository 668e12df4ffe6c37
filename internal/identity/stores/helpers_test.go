package stores

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/identitystore/internal/identity/models"
	"github.com/dmitrijs2005/identitystore/internal/storage"
	"github.com/dmitrijs2005/identitystore/internal/storage/blob"
)

type stubProvider[T any] struct {
	items    []T
	loadErr  error
	failSave bool
	saves    int
}

func (p *stubProvider[T]) Load(context.Context) ([]T, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return append([]T(nil), p.items...), nil
}

func (p *stubProvider[T]) Save(_ context.Context, items []T) bool {
	if p.failSave {
		return false
	}
	p.saves++
	p.items = append([]T(nil), items...)
	return true
}

type storeMode struct {
	name string
	opts []Option
}

var modes = []storeMode{
	{name: "direct"},
	{name: "cached", opts: []Option{WithCache()}},
}

func userProviders(t *testing.T) map[string]func() storage.Provider[models.User] {
	t.Helper()
	dir := t.TempDir()
	return map[string]func() storage.Provider[models.User]{
		"file": func() storage.Provider[models.User] {
			return storage.NewFileProvider[models.User](filepath.Join(dir, "users.json"), nil)
		},
		"blob": func() storage.Provider[models.User] {
			return storage.NewBlobProvider[models.User](blob.NewMemoryStorage(), "users.json", nil)
		},
	}
}

// forEachUserStore runs fn against a fresh store for every provider and mode.
func forEachUserStore(t *testing.T, fn func(t *testing.T, s *Users)) {
	t.Helper()
	for _, m := range modes {
		for name, mk := range userProviders(t) {
			t.Run(name+"/"+m.name, func(t *testing.T) {
				fn(t, NewUsers(mk(), m.opts...))
			})
		}
	}
}

func forEachRoleStore(t *testing.T, fn func(t *testing.T, s *Roles)) {
	t.Helper()
	for _, m := range modes {
		t.Run("file/"+m.name, func(t *testing.T) {
			p := storage.NewFileProvider[models.Role](filepath.Join(t.TempDir(), "roles.json"), nil)
			fn(t, NewRoles(p, m.opts...))
		})
		t.Run("blob/"+m.name, func(t *testing.T) {
			p := storage.NewBlobProvider[models.Role](blob.NewMemoryStorage(), "roles.json", nil)
			fn(t, NewRoles(p, m.opts...))
		})
	}
}

func newUser(name string) *models.User {
	u := models.NewUser(name)
	u.NormalizedUserName = strings.ToUpper(name)
	u.Email = name + "@example.com"
	u.NormalizedEmail = strings.ToUpper(u.Email)
	return u
}
