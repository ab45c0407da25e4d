package authz

import (
	"context"
)

// MembershipManager manages the write side of memberships. This is separate
// from MembershipStore: the resolver only ever reads, the services only ever
// mutate through this interface.
type MembershipManager interface {
	// AddBrandMember inserts a brand membership row. Status decides the
	// lifecycle entry point: invited for invitations, active for the
	// creation-time owner.
	AddBrandMember(ctx context.Context, userID, brandID string, role BrandRole, status MemberStatus, invitedBy string) error

	// UpdateBrandMemberRole changes a member's role within a brand
	UpdateBrandMemberRole(ctx context.Context, userID, brandID string, role BrandRole) error

	// UpdateBrandMemberStatus moves a brand membership through its lifecycle
	// (invite acceptance, suspension, leaving)
	UpdateBrandMemberStatus(ctx context.Context, userID, brandID string, status MemberStatus) error

	// RemoveBrandMember deletes a brand membership row
	RemoveBrandMember(ctx context.Context, userID, brandID string) error

	// GetBrandMembers returns all members of a brand with user details
	GetBrandMembers(ctx context.Context, brandID string) ([]BrandMembership, error)

	// GetUserBrandMemberships returns all brand memberships for a user
	GetUserBrandMemberships(ctx context.Context, userID string) ([]BrandMembership, error)

	// AddBranchMember inserts a branch membership row
	AddBranchMember(ctx context.Context, userID, branchID string, role BranchRole, status MemberStatus, invitedBy string) error

	// UpdateBranchMemberRole changes a member's role within a branch
	UpdateBranchMemberRole(ctx context.Context, userID, branchID string, role BranchRole) error

	// UpdateBranchMemberStatus moves a branch membership through its lifecycle
	UpdateBranchMemberStatus(ctx context.Context, userID, branchID string, status MemberStatus) error

	// RemoveBranchMember deletes a branch membership row
	RemoveBranchMember(ctx context.Context, userID, branchID string) error

	// GetBranchMembers returns all members of a branch with user details
	GetBranchMembers(ctx context.Context, branchID string) ([]BranchMembership, error)
}
