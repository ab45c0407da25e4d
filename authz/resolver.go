package authz

import (
	"context"
	"errors"
)

// ResourceType identifies the kind of resource an authorization request
// targets.
type ResourceType string

const (
	ResourceBrand  ResourceType = "brand"
	ResourceBranch ResourceType = "branch"
)

// Resource is the target of an authorization request: exactly one id, tagged
// with its kind. Use BrandResource/BranchResource to construct it so the
// "both or neither id" class of bugs cannot occur.
type Resource struct {
	Type ResourceType
	ID   string
}

// BrandResource targets a brand by id.
func BrandResource(id string) Resource { return Resource{Type: ResourceBrand, ID: id} }

// BranchResource targets a branch by id.
func BranchResource(id string) Resource { return Resource{Type: ResourceBranch, ID: id} }

// Resolver is the single entry point for access-control decisions. It is
// stateless and side-effect free: all state comes from the MembershipStore,
// nothing is cached or written, and store failures surface as DB_ERROR
// decisions rather than errors. Cancellation is the caller's job via ctx.
type Resolver struct {
	store MembershipStore
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store MembershipStore) *Resolver {
	return &Resolver{store: store}
}

// Store returns the backing MembershipStore, for services that need the
// same read view the resolver uses.
func (r *Resolver) Store() MembershipStore {
	return r.store
}

// Authorize decides whether userID may perform action on the given resource.
//
// Brand-scoped actions consult the brand membership only. Branch-scoped
// actions consult the branch membership first; brand-level authority is
// inherited (via MapBrandRoleToBranchRole) only when no branch membership row
// exists at all. An inactive branch membership is final: explicit branch
// assignment, even suspended, overrides implicit brand-derived authority.
func (r *Resolver) Authorize(ctx context.Context, userID string, res Resource, action Action) Decision {
	scope, ok := ActionScope(action)
	if !ok {
		// Action outside the catalog: configuration error, never granted.
		return Denied(ReasonForbidden)
	}

	switch scope {
	case ScopeBrand:
		if res.Type != ResourceBrand || res.ID == "" {
			return Denied(ReasonNotFound)
		}
		return r.authorizeBrand(ctx, userID, res.ID, action)
	case ScopeBranch:
		if res.Type != ResourceBranch || res.ID == "" {
			return Denied(ReasonNotFound)
		}
		return r.authorizeBranch(ctx, userID, res.ID, action)
	default:
		return Denied(ReasonForbidden)
	}
}

func (r *Resolver) authorizeBrand(ctx context.Context, userID, brandID string, action Action) Decision {
	m, err := r.store.GetBrandMembership(ctx, userID, brandID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Denied(ReasonNotMember)
		}
		return Denied(ReasonDBError)
	}
	if !m.Status.IsActive() {
		return Denied(ReasonInactive)
	}
	if !BrandPolicyAllows(action, m.Role) {
		return Denied(ReasonForbidden)
	}
	return GrantedBrand(m.Role)
}

func (r *Resolver) authorizeBranch(ctx context.Context, userID, branchID string, action Action) Decision {
	m, err := r.store.GetBranchMembership(ctx, userID, branchID)
	switch {
	case err == nil:
		// Direct branch membership is final, whatever the outcome.
		if !m.Status.IsActive() {
			return Denied(ReasonInactive)
		}
		if !BranchPolicyAllows(action, m.Role) {
			return Denied(ReasonForbidden)
		}
		return GrantedBranch(m.Role)
	case !errors.Is(err, ErrNotFound):
		return Denied(ReasonDBError)
	}

	// No branch row: fall back to brand-level authority.
	brandID, err := r.store.GetBranchBrandID(ctx, branchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Denied(ReasonNotFound)
		}
		return Denied(ReasonDBError)
	}

	bm, err := r.store.GetBrandMembership(ctx, userID, brandID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Denied(ReasonNotMember)
		}
		return Denied(ReasonDBError)
	}
	if !bm.Status.IsActive() {
		return Denied(ReasonInactive)
	}

	inherited, ok := MapBrandRoleToBranchRole(bm.Role)
	if !ok {
		// Legitimate brand member without branch-operational rights.
		return Denied(ReasonForbidden)
	}
	if !BranchPolicyAllows(action, inherited) {
		return Denied(ReasonForbidden)
	}
	return GrantedBranch(inherited)
}
