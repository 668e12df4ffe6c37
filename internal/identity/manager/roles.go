package manager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
)

func (m *Manager) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", common.ErrorValidation)
	}

	normalized := m.norm.Normalize(name)
	if err := m.ensureAbsent(m.roles.FindByName(ctx, normalized)); err != nil {
		return nil, fmt.Errorf("role %q: %w", name, err)
	}

	r := models.NewRole(name)
	if err := m.roles.SetNormalizedRoleName(ctx, r, normalized); err != nil {
		return nil, err
	}
	if err := m.roles.Create(ctx, r); err != nil {
		return nil, err
	}

	m.log.Info(ctx, "role created", "id", r.ID, "role", name)
	return r, nil
}

func (m *Manager) FindRole(ctx context.Context, name string) (*models.Role, error) {
	r, err := m.roles.FindByName(ctx, m.norm.Normalize(name))
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", name, err)
	}
	return r, nil
}

func (m *Manager) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return m.roles.List(ctx)
}

// DeleteRole deletes the role and takes it away from every member.
func (m *Manager) DeleteRole(ctx context.Context, name string) error {
	r, err := m.FindRole(ctx, name)
	if err != nil {
		return err
	}

	members, err := m.users.GetUsersInRole(ctx, r.NormalizedName)
	if err != nil {
		return err
	}
	for _, u := range members {
		for u.InRole(r.NormalizedName) {
			if err := m.users.RemoveFromRole(ctx, u, r.NormalizedName); err != nil {
				return err
			}
		}
		if err := m.users.Update(ctx, u); err != nil {
			return err
		}
	}

	if err := m.roles.Delete(ctx, r); err != nil {
		return err
	}
	m.log.Info(ctx, "role deleted", "id", r.ID, "role", r.Name, "members", len(members))
	return nil
}

// AddToRole adds an existing role to the user.
func (m *Manager) AddToRole(ctx context.Context, userName, roleName string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	r, err := m.FindRole(ctx, roleName)
	if err != nil {
		return err
	}

	in, err := m.users.IsInRole(ctx, u, r.NormalizedName)
	if err != nil {
		return err
	}
	if in {
		return fmt.Errorf("user %q in role %q: %w", userName, roleName, common.ErrorAlreadyExists)
	}

	if err := m.users.AddToRole(ctx, u, r.NormalizedName); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

func (m *Manager) RemoveFromRole(ctx context.Context, userName, roleName string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	r, err := m.FindRole(ctx, roleName)
	if err != nil {
		return err
	}

	in, err := m.users.IsInRole(ctx, u, r.NormalizedName)
	if err != nil {
		return err
	}
	if !in {
		return fmt.Errorf("user %q in role %q: %w", userName, roleName, common.ErrorNotFound)
	}

	if err := m.users.RemoveFromRole(ctx, u, r.NormalizedName); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

func (m *Manager) AddClaim(ctx context.Context, userName string, claim models.Claim) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	if err := m.users.AddClaims(ctx, u, []models.Claim{claim}); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

func (m *Manager) RemoveClaim(ctx context.Context, userName string, claim models.Claim) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	if err := m.users.RemoveClaims(ctx, u, []models.Claim{claim}); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

func (m *Manager) AddRoleClaim(ctx context.Context, roleName string, claim models.Claim) error {
	r, err := m.FindRole(ctx, roleName)
	if err != nil {
		return err
	}
	if err := m.roles.AddClaim(ctx, r, claim); err != nil {
		return err
	}
	return m.roles.Update(ctx, r)
}

func (m *Manager) RemoveRoleClaim(ctx context.Context, roleName string, claim models.Claim) error {
	r, err := m.FindRole(ctx, roleName)
	if err != nil {
		return err
	}
	if err := m.roles.RemoveClaim(ctx, r, claim); err != nil {
		return err
	}
	return m.roles.Update(ctx, r)
}
