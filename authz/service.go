package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// denyError translates a denied decision into a service-layer error.
// Store failures fail closed: callers cannot tell a broken store to grant.
func denyError(d Decision) error {
	if d.OK {
		return nil
	}
	if d.Reason == ReasonNotFound {
		return ErrNotFound
	}
	return ErrForbidden
}

// BrandService handles brand business logic: CRUD plus the brand membership
// lifecycle, every operation gated through the Resolver.
type BrandService struct {
	resolver *Resolver
	members  MembershipManager
	store    MembershipStore
	repo     BrandRepository
}

// NewBrandService creates a new brand service
func NewBrandService(resolver *Resolver, members MembershipManager, store MembershipStore, repo BrandRepository) *BrandService {
	return &BrandService{
		resolver: resolver,
		members:  members,
		store:    store,
		repo:     repo,
	}
}

// CreateBrandInput represents input for creating a brand
type CreateBrandInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// CreateBrand creates a new brand and assigns the creator as active owner
func (s *BrandService) CreateBrand(ctx context.Context, userID string, input CreateBrandInput) (*Brand, error) {
	if input.Name == "" || input.Slug == "" {
		return nil, ErrInvalidInput
	}

	if s.repo.SlugExists(ctx, input.Slug) {
		return nil, fmt.Errorf("%w: slug already taken", ErrAlreadyExists)
	}

	brand := &Brand{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	// The creator becomes the sole owner, usable immediately.
	if err := s.members.AddBrandMember(ctx, userID, brand.ID, BrandRoleOwner, StatusActive, ""); err != nil {
		// Rollback brand creation
		_ = s.repo.Delete(ctx, brand.ID)
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	return brand, nil
}

// GetBrand retrieves a brand by ID (requires brand:read)
func (s *BrandService) GetBrand(ctx context.Context, userID, brandID string) (*Brand, error) {
	if d := s.resolver.Authorize(ctx, userID, BrandResource(brandID), ActionBrandRead); !d.Allowed() {
		return nil, denyError(d)
	}
	return s.repo.Get(ctx, brandID)
}

// ListUserBrands returns all brands the user holds a membership in
func (s *BrandService) ListUserBrands(ctx context.Context, userID string) ([]Brand, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateBrandInput represents input for updating a brand
type UpdateBrandInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

// UpdateBrand updates a brand (requires brand:update)
func (s *BrandService) UpdateBrand(ctx context.Context, userID, brandID string, input UpdateBrandInput) (*Brand, error) {
	if d := s.resolver.Authorize(ctx, userID, BrandResource(brandID), ActionBrandUpdate); !d.Allowed() {
		return nil, denyError(d)
	}

	brand, err := s.repo.Get(ctx, brandID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		brand.Name = *input.Name
	}
	if input.Description != nil {
		brand.Description = *input.Description
	}
	if input.LogoURL != nil {
		brand.LogoURL = *input.LogoURL
	}

	if err := s.repo.Update(ctx, brand); err != nil {
		return nil, err
	}

	return brand, nil
}

// InviteBrandMemberInput represents input for inviting a member
type InviteBrandMemberInput struct {
	UserID string    `json:"user_id"`
	Role   BrandRole `json:"role"`
}

// InviteBrandMember invites a user into a brand (requires brand:member_manage).
// The new membership starts as invited and is unusable until accepted.
func (s *BrandService) InviteBrandMember(ctx context.Context, actorID, brandID string, input InviteBrandMemberInput) error {
	if d := s.resolver.Authorize(ctx, actorID, BrandResource(brandID), ActionBrandMemberManage); !d.Allowed() {
		return denyError(d)
	}

	// Only brand creation mints an owner
	if input.Role == BrandRoleOwner {
		return fmt.Errorf("%w: cannot invite another owner", ErrInvalidInput)
	}

	return s.members.AddBrandMember(ctx, input.UserID, brandID, input.Role, StatusInvited, actorID)
}

// AcceptBrandInvite moves the caller's own invited membership to active
func (s *BrandService) AcceptBrandInvite(ctx context.Context, userID, brandID string) error {
	m, err := s.store.GetBrandMembership(ctx, userID, brandID)
	if err != nil {
		return err
	}
	if m.Status != StatusInvited {
		return fmt.Errorf("%w: membership is not pending", ErrInvalidInput)
	}
	return s.members.UpdateBrandMemberStatus(ctx, userID, brandID, StatusActive)
}

// UpdateBrandMemberRole updates a member's role (requires brand:member_manage)
func (s *BrandService) UpdateBrandMemberRole(ctx context.Context, actorID, brandID, targetUserID string, newRole BrandRole) error {
	if d := s.resolver.Authorize(ctx, actorID, BrandResource(brandID), ActionBrandMemberManage); !d.Allowed() {
		return denyError(d)
	}

	target, err := s.store.GetBrandMembership(ctx, targetUserID, brandID)
	if err != nil {
		return err
	}
	if target.Role == BrandRoleOwner {
		return fmt.Errorf("%w: cannot change owner's role", ErrInvalidInput)
	}
	if newRole == BrandRoleOwner {
		return fmt.Errorf("%w: cannot promote to owner", ErrInvalidInput)
	}

	return s.members.UpdateBrandMemberRole(ctx, targetUserID, brandID, newRole)
}

// SuspendBrandMember suspends a member (requires brand:member_manage).
// The membership row stays; the member just becomes unusable for authorization.
func (s *BrandService) SuspendBrandMember(ctx context.Context, actorID, brandID, targetUserID string) error {
	if d := s.resolver.Authorize(ctx, actorID, BrandResource(brandID), ActionBrandMemberManage); !d.Allowed() {
		return denyError(d)
	}

	target, err := s.store.GetBrandMembership(ctx, targetUserID, brandID)
	if err != nil {
		return err
	}
	if target.Role == BrandRoleOwner {
		return fmt.Errorf("%w: cannot suspend owner", ErrInvalidInput)
	}

	return s.members.UpdateBrandMemberStatus(ctx, targetUserID, brandID, StatusSuspended)
}

// RemoveBrandMember removes a member from a brand (requires brand:member_manage)
func (s *BrandService) RemoveBrandMember(ctx context.Context, actorID, brandID, targetUserID string) error {
	if d := s.resolver.Authorize(ctx, actorID, BrandResource(brandID), ActionBrandMemberManage); !d.Allowed() {
		return denyError(d)
	}

	target, err := s.store.GetBrandMembership(ctx, targetUserID, brandID)
	if err != nil {
		return err
	}
	if target.Role == BrandRoleOwner {
		return fmt.Errorf("%w: cannot remove owner", ErrInvalidInput)
	}
	if actorID == targetUserID {
		return ErrCannotRemoveSelf
	}

	return s.members.RemoveBrandMember(ctx, targetUserID, brandID)
}

// GetBrandMembers returns all members of a brand (requires brand:read)
func (s *BrandService) GetBrandMembers(ctx context.Context, userID, brandID string) ([]BrandMembership, error) {
	if d := s.resolver.Authorize(ctx, userID, BrandResource(brandID), ActionBrandRead); !d.Allowed() {
		return nil, denyError(d)
	}
	return s.members.GetBrandMembers(ctx, brandID)
}

// ============================================================================
// BranchService
// ============================================================================

// BranchService handles branch business logic.
type BranchService struct {
	resolver *Resolver
	members  MembershipManager
	store    MembershipStore
	repo     BranchRepository
}

// NewBranchService creates a new branch service
func NewBranchService(resolver *Resolver, members MembershipManager, store MembershipStore, repo BranchRepository) *BranchService {
	return &BranchService{
		resolver: resolver,
		members:  members,
		store:    store,
		repo:     repo,
	}
}

// CreateBranchInput represents input for creating a branch
type CreateBranchInput struct {
	BrandID string `json:"brand_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CreateBranch creates a new branch under a brand (requires brand:branch_create)
func (s *BranchService) CreateBranch(ctx context.Context, userID string, input CreateBranchInput) (*Branch, error) {
	if d := s.resolver.Authorize(ctx, userID, BrandResource(input.BrandID), ActionBranchCreate); !d.Allowed() {
		return nil, denyError(d)
	}

	if input.Name == "" || input.Slug == "" {
		return nil, ErrInvalidInput
	}

	if s.repo.SlugExistsInBrand(ctx, input.BrandID, input.Slug) {
		return nil, fmt.Errorf("%w: slug already taken in this brand", ErrAlreadyExists)
	}

	branch := &Branch{
		ID:       uuid.New().String(),
		BrandID:  input.BrandID,
		Name:     input.Name,
		Slug:     input.Slug,
		Address:  input.Address,
		Phone:    input.Phone,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	// No explicit branch membership is created: brand staff inherit access
	// through the inheritance rule until someone is assigned directly.

	return branch, nil
}

// GetBranch retrieves a branch by ID (requires branch:read)
func (s *BranchService) GetBranch(ctx context.Context, userID, branchID string) (*Branch, error) {
	if d := s.resolver.Authorize(ctx, userID, BranchResource(branchID), ActionBranchRead); !d.Allowed() {
		return nil, denyError(d)
	}
	return s.repo.Get(ctx, branchID)
}

// ListBrandBranches returns all branches of a brand (requires brand:read)
func (s *BranchService) ListBrandBranches(ctx context.Context, userID, brandID string) ([]Branch, error) {
	if d := s.resolver.Authorize(ctx, userID, BrandResource(brandID), ActionBrandRead); !d.Allowed() {
		return nil, denyError(d)
	}
	return s.repo.ListByBrand(ctx, brandID)
}

// UpdateBranchInput represents input for updating a branch
type UpdateBranchInput struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// UpdateBranch updates a branch (requires branch:update)
func (s *BranchService) UpdateBranch(ctx context.Context, userID, branchID string, input UpdateBranchInput) (*Branch, error) {
	if d := s.resolver.Authorize(ctx, userID, BranchResource(branchID), ActionBranchUpdate); !d.Allowed() {
		return nil, denyError(d)
	}

	branch, err := s.repo.Get(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		branch.Name = *input.Name
	}
	if input.Address != nil {
		branch.Address = *input.Address
	}
	if input.Phone != nil {
		branch.Phone = *input.Phone
	}

	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, err
	}

	return branch, nil
}

// InviteBranchMemberInput represents input for inviting a branch member
type InviteBranchMemberInput struct {
	UserID string     `json:"user_id"`
	Role   BranchRole `json:"role"`
}

// InviteBranchMember invites a user into a branch (requires branch:member_manage).
// The target must already hold an active membership in the owning brand.
func (s *BranchService) InviteBranchMember(ctx context.Context, actorID, branchID string, input InviteBranchMemberInput) error {
	if d := s.resolver.Authorize(ctx, actorID, BranchResource(branchID), ActionBranchMemberManage); !d.Allowed() {
		return denyError(d)
	}

	if input.Role == BranchRoleOwner {
		return fmt.Errorf("%w: branch owner is assigned, not invited", ErrInvalidInput)
	}

	brandID, err := s.repo.GetBrandID(ctx, branchID)
	if err != nil {
		return err
	}

	bm, err := s.store.GetBrandMembership(ctx, input.UserID, brandID)
	if err != nil || !bm.Status.IsActive() {
		return fmt.Errorf("%w: user must be an active member of the brand first", ErrInvalidInput)
	}

	return s.members.AddBranchMember(ctx, input.UserID, branchID, input.Role, StatusInvited, actorID)
}

// AcceptBranchInvite moves the caller's own invited membership to active
func (s *BranchService) AcceptBranchInvite(ctx context.Context, userID, branchID string) error {
	m, err := s.store.GetBranchMembership(ctx, userID, branchID)
	if err != nil {
		return err
	}
	if m.Status != StatusInvited {
		return fmt.Errorf("%w: membership is not pending", ErrInvalidInput)
	}
	return s.members.UpdateBranchMemberStatus(ctx, userID, branchID, StatusActive)
}

// UpdateBranchMemberRole updates a member's role (requires branch:member_manage)
func (s *BranchService) UpdateBranchMemberRole(ctx context.Context, actorID, branchID, targetUserID string, newRole BranchRole) error {
	if d := s.resolver.Authorize(ctx, actorID, BranchResource(branchID), ActionBranchMemberManage); !d.Allowed() {
		return denyError(d)
	}

	target, err := s.store.GetBranchMembership(ctx, targetUserID, branchID)
	if err != nil {
		return err
	}
	if target.Role == BranchRoleOwner {
		return fmt.Errorf("%w: cannot change branch owner's role", ErrInvalidInput)
	}

	return s.members.UpdateBranchMemberRole(ctx, targetUserID, branchID, newRole)
}

// SuspendBranchMember suspends a branch member (requires branch:member_manage)
func (s *BranchService) SuspendBranchMember(ctx context.Context, actorID, branchID, targetUserID string) error {
	if d := s.resolver.Authorize(ctx, actorID, BranchResource(branchID), ActionBranchMemberManage); !d.Allowed() {
		return denyError(d)
	}

	target, err := s.store.GetBranchMembership(ctx, targetUserID, branchID)
	if err != nil {
		return err
	}
	if target.Role == BranchRoleOwner {
		return fmt.Errorf("%w: cannot suspend branch owner", ErrInvalidInput)
	}

	return s.members.UpdateBranchMemberStatus(ctx, targetUserID, branchID, StatusSuspended)
}

// RemoveBranchMember removes a member from a branch (requires branch:member_manage)
func (s *BranchService) RemoveBranchMember(ctx context.Context, actorID, branchID, targetUserID string) error {
	if d := s.resolver.Authorize(ctx, actorID, BranchResource(branchID), ActionBranchMemberManage); !d.Allowed() {
		return denyError(d)
	}

	if actorID == targetUserID {
		return ErrCannotRemoveSelf
	}

	return s.members.RemoveBranchMember(ctx, targetUserID, branchID)
}

// GetBranchMembers returns all members of a branch (requires branch:read)
func (s *BranchService) GetBranchMembers(ctx context.Context, userID, branchID string) ([]BranchMembership, error) {
	if d := s.resolver.Authorize(ctx, userID, BranchResource(branchID), ActionBranchRead); !d.Allowed() {
		return nil, denyError(d)
	}
	return s.members.GetBranchMembers(ctx, branchID)
}
