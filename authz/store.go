package authz

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden: you don't have permission to perform this action")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCannotRemoveSelf = errors.New("cannot remove yourself")
)

// BrandMembership relates one user to one brand. At most one row exists per
// (user, brand) pair; the database enforces this, the resolver assumes it.
type BrandMembership struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	BrandID   string       `json:"brand_id"`
	Role      BrandRole    `json:"role"`
	Status    MemberStatus `json:"status"`
	InvitedBy string       `json:"invited_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	// User details (populated when listing brand members)
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// BranchMembership relates one user to one branch. At most one row exists per
// (user, branch) pair.
type BranchMembership struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	BranchID  string       `json:"branch_id"`
	Role      BranchRole   `json:"role"`
	Status    MemberStatus `json:"status"`
	InvitedBy string       `json:"invited_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Name      string       `json:"name,omitempty"`
	Email     string       `json:"email,omitempty"`
}

// MembershipStore is the narrow read capability the resolver depends on.
// Exactly three lookups; nothing else. An absent row is reported as
// ErrNotFound, any other error means the store could not be queried.
//
// Implementations must not hide store failures behind ErrNotFound: the
// resolver distinguishes "no membership" from "could not determine".
type MembershipStore interface {
	// GetBrandMembership returns the user's membership row for a brand.
	GetBrandMembership(ctx context.Context, userID, brandID string) (*BrandMembership, error)

	// GetBranchMembership returns the user's membership row for a branch.
	GetBranchMembership(ctx context.Context, userID, branchID string) (*BranchMembership, error)

	// GetBranchBrandID returns the owning brand of a branch.
	GetBranchBrandID(ctx context.Context, branchID string) (string, error)
}
