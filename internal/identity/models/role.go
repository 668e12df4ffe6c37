package models

// Role is a named group of users carrying its own claims.
type Role struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
	ClaimSet
}

func NewRole(name string) *Role {
	return &Role{Name: name}
}

func (r *Role) String() string {
	return r.Name
}

// Clone returns a deep copy of r.
func (r Role) Clone() Role {
	c := r
	c.Claims = cloneSlice(r.Claims)
	return c
}
