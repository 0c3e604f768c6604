package authz

import (
	"context"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Policy binds a role to the capabilities it holds. Roles are flat; there is
// no inheritance, a capability is granted to a role or it is not.
type Policy struct {
	Role           string    `json:"role" bson:"_id"`
	CanCancelItems bool      `json:"can_cancel_items" bson:"can_cancel_items"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type PolicyRepo interface {
	Get(ctx context.Context, role string) (*Policy, error)
	List(ctx context.Context) ([]*Policy, error)
	Save(ctx context.Context, p *Policy) error
	Count(ctx context.Context) (int64, error)
}

// DefaultPolicies seeds the role catalog on first boot. Staff, the lowest
// role, cannot cancel items; a manager or admin has to step in.
func DefaultPolicies() []*Policy {
	now := time.Now()
	return []*Policy{
		{Role: RoleAdmin, CanCancelItems: true, UpdatedAt: now},
		{Role: RoleManager, CanCancelItems: true, UpdatedAt: now},
		{Role: RoleStaff, CanCancelItems: false, UpdatedAt: now},
	}
}

// CanCancel resolves whether the role may cancel line items. Unknown roles
// are denied, never granted by default.
func CanCancel(ctx context.Context, repo PolicyRepo, role string) bool {
	if repo == nil || role == "" {
		return false
	}
	p, err := repo.Get(ctx, role)
	if err != nil || p == nil {
		return false
	}
	return p.CanCancelItems
}
