package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/storage"
)

// Roles is the role store.
type Roles struct {
	mu  sync.Mutex
	src source[models.Role]
	log logging.Logger
}

func NewRoles(provider storage.Provider[models.Role], opts ...Option) *Roles {
	o := buildOptions(opts)
	return &Roles{
		src: newSource(provider, o),
		log: o.log.With("store", "roles"),
	}
}

func checkRole(ctx context.Context, r *models.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: nil role", common.ErrorValidation)
	}
	return nil
}

func (s *Roles) Create(ctx context.Context, r *models.Role) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = common.NewID()
	}
	if err := s.src.add(ctx, r.Clone()); err != nil {
		return fmt.Errorf("create role %s: %w", r.ID, err)
	}
	s.log.Debug(ctx, "role created", "id", r.ID, "name", r.Name)
	return nil
}

// Update removes the stored role with the same id, if any, and appends r.
func (s *Roles) Update(ctx context.Context, r *models.Role) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.ID
	if err := s.src.remove(ctx, func(x models.Role) bool { return x.ID == id }); err != nil {
		return fmt.Errorf("update role %s: %w", id, err)
	}
	if err := s.src.add(ctx, r.Clone()); err != nil {
		return fmt.Errorf("update role %s: %w", id, err)
	}
	return nil
}

func (s *Roles) Delete(ctx context.Context, r *models.Role) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.ID
	if err := s.src.remove(ctx, func(x models.Role) bool { return x.ID == id }); err != nil {
		return fmt.Errorf("delete role %s: %w", id, err)
	}
	s.log.Debug(ctx, "role deleted", "id", id)
	return nil
}

// Invalidate drops cached records so the next call reloads them.
func (s *Roles) Invalidate() {
	s.src.invalidate()
}

func (s *Roles) first(ctx context.Context, match func(*models.Role) bool) (*models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.src.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			r := items[i].Clone()
			return &r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *Roles) FindByID(ctx context.Context, roleID string) (*models.Role, error) {
	return s.first(ctx, func(r *models.Role) bool { return r.ID == roleID })
}

func (s *Roles) FindByName(ctx context.Context, normalizedName string) (*models.Role, error) {
	return s.first(ctx, func(r *models.Role) bool { return r.NormalizedName == normalizedName })
}

func (s *Roles) List(ctx context.Context) ([]*models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.src.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Role, 0, len(items))
	for i := range items {
		r := items[i].Clone()
		out = append(out, &r)
	}
	return out, nil
}

func (s *Roles) GetRoleID(ctx context.Context, r *models.Role) (string, error) {
	if err := checkRole(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *Roles) GetRoleName(ctx context.Context, r *models.Role) (string, error) {
	if err := checkRole(ctx, r); err != nil {
		return "", err
	}
	return r.Name, nil
}

func (s *Roles) SetRoleName(ctx context.Context, r *models.Role, name string) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	r.Name = name
	return nil
}

func (s *Roles) GetNormalizedRoleName(ctx context.Context, r *models.Role) (string, error) {
	if err := checkRole(ctx, r); err != nil {
		return "", err
	}
	return r.NormalizedName, nil
}

func (s *Roles) SetNormalizedRoleName(ctx context.Context, r *models.Role, normalizedName string) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	r.NormalizedName = normalizedName
	return nil
}

func (s *Roles) GetClaims(ctx context.Context, r *models.Role) ([]models.Claim, error) {
	if err := checkRole(ctx, r); err != nil {
		return nil, err
	}
	return r.ClaimList(), nil
}

func (s *Roles) AddClaim(ctx context.Context, r *models.Role, claim models.Claim) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	r.AddClaim(claim)
	return nil
}

func (s *Roles) RemoveClaim(ctx context.Context, r *models.Role, claim models.Claim) error {
	if err := checkRole(ctx, r); err != nil {
		return err
	}
	r.RemoveClaim(claim)
	return nil
}
