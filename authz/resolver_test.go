package authz

import (
	"context"
	"errors"
	"testing"
)

// fakeStore is an in-memory MembershipStore with error injection.
type fakeStore struct {
	brandMembers  map[string]*BrandMembership  // key: userID|brandID
	branchMembers map[string]*BranchMembership // key: userID|branchID
	branchBrands  map[string]string            // key: branchID

	brandErr  error
	branchErr error
	lookupErr error

	branchBrandCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		brandMembers:  make(map[string]*BrandMembership),
		branchMembers: make(map[string]*BranchMembership),
		branchBrands:  make(map[string]string),
	}
}

func (f *fakeStore) GetBrandMembership(ctx context.Context, userID, brandID string) (*BrandMembership, error) {
	if f.brandErr != nil {
		return nil, f.brandErr
	}
	if m, ok := f.brandMembers[userID+"|"+brandID]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) GetBranchMembership(ctx context.Context, userID, branchID string) (*BranchMembership, error) {
	if f.branchErr != nil {
		return nil, f.branchErr
	}
	if m, ok := f.branchMembers[userID+"|"+branchID]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) GetBranchBrandID(ctx context.Context, branchID string) (string, error) {
	f.branchBrandCalls++
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	if brandID, ok := f.branchBrands[branchID]; ok {
		return brandID, nil
	}
	return "", ErrNotFound
}

func (f *fakeStore) addBrandMember(userID, brandID string, role BrandRole, status MemberStatus) {
	f.brandMembers[userID+"|"+brandID] = &BrandMembership{
		ID: "bm-" + userID, UserID: userID, BrandID: brandID, Role: role, Status: status,
	}
}

func (f *fakeStore) addBranchMember(userID, branchID string, role BranchRole, status MemberStatus) {
	f.branchMembers[userID+"|"+branchID] = &BranchMembership{
		ID: "brm-" + userID, UserID: userID, BranchID: branchID, Role: role, Status: status,
	}
}

var errBoom = errors.New("connection refused")

func TestAuthorize_BrandScope(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(*fakeStore)
		userID string
		res    Resource
		action Action
		want   Decision
	}{
		{
			name:   "no membership row denies NOT_MEMBER",
			setup:  func(s *fakeStore) {},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandRead,
			want:   Denied(ReasonNotMember),
		},
		{
			name: "invited membership denies INACTIVE",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusInvited)
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandRead,
			want:   Denied(ReasonInactive),
		},
		{
			name: "suspended membership denies INACTIVE",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleAdmin, StatusSuspended)
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandUpdate,
			want:   Denied(ReasonInactive),
		},
		{
			name: "left membership denies INACTIVE",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleAdmin, StatusLeft)
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandRead,
			want:   Denied(ReasonInactive),
		},
		{
			name: "active member without permission denies FORBIDDEN",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleMember, StatusActive)
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandUpdate,
			want:   Denied(ReasonForbidden),
		},
		{
			name: "active admin granted with own role",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleAdmin, StatusActive)
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBranchCreate,
			want:   GrantedBrand(BrandRoleAdmin),
		},
		{
			name: "store failure denies DB_ERROR",
			setup: func(s *fakeStore) {
				s.brandErr = errBoom
			},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: ActionBrandRead,
			want:   Denied(ReasonDBError),
		},
		{
			name:   "missing brand id denies NOT_FOUND",
			setup:  func(s *fakeStore) {},
			userID: "user-1",
			res:    BrandResource(""),
			action: ActionBrandRead,
			want:   Denied(ReasonNotFound),
		},
		{
			name: "branch resource with brand action denies NOT_FOUND",
			setup: func(s *fakeStore) {
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusActive)
			},
			userID: "user-1",
			res:    BranchResource("branch-1"),
			action: ActionBrandUpdate,
			want:   Denied(ReasonNotFound),
		},
		{
			name:   "unknown action denies FORBIDDEN",
			setup:  func(s *fakeStore) {},
			userID: "user-1",
			res:    BrandResource("brand-1"),
			action: Action("brand:launch_rocket"),
			want:   Denied(ReasonForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)
			r := NewResolver(store)

			got := r.Authorize(ctx, tt.userID, tt.res, tt.action)
			if got != tt.want {
				t.Errorf("Authorize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAuthorize_BrandPolicyExhaustive(t *testing.T) {
	// Every (role, action) pair behaves exactly as the policy table says:
	// in the allowed set -> granted with that role, outside it -> FORBIDDEN.
	ctx := context.Background()
	roles := []BrandRole{BrandRoleOwner, BrandRoleAdmin, BrandRoleManager, BrandRoleMember}

	for action := range BrandActions {
		for _, role := range roles {
			store := newFakeStore()
			store.addBrandMember("user-1", "brand-1", role, StatusActive)
			r := NewResolver(store)

			got := r.Authorize(ctx, "user-1", BrandResource("brand-1"), action)
			if BrandPolicy[action][role] {
				want := GrantedBrand(role)
				if got != want {
					t.Errorf("%v as %v = %+v, want %+v", action, role, got, want)
				}
			} else if got != Denied(ReasonForbidden) {
				t.Errorf("%v as %v = %+v, want FORBIDDEN", action, role, got)
			}
		}
	}
}

func TestAuthorize_BranchScope_DirectMembership(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(*fakeStore)
		action Action
		want   Decision
	}{
		{
			name: "active staff granted operate",
			setup: func(s *fakeStore) {
				s.addBranchMember("user-1", "branch-1", BranchRoleStaff, StatusActive)
			},
			action: ActionBranchOperate,
			want:   GrantedBranch(BranchRoleStaff),
		},
		{
			name: "active viewer forbidden to operate",
			setup: func(s *fakeStore) {
				s.addBranchMember("user-1", "branch-1", BranchRoleViewer, StatusActive)
			},
			action: ActionBranchOperate,
			want:   Denied(ReasonForbidden),
		},
		{
			name: "invited branch admin denies INACTIVE",
			setup: func(s *fakeStore) {
				s.addBranchMember("user-1", "branch-1", BranchRoleAdmin, StatusInvited)
			},
			action: ActionBranchRead,
			want:   Denied(ReasonInactive),
		},
		{
			name: "branch lookup failure denies DB_ERROR",
			setup: func(s *fakeStore) {
				s.branchErr = errBoom
			},
			action: ActionBranchRead,
			want:   Denied(ReasonDBError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			// A generous brand membership exists in every case; a direct
			// branch row must make it irrelevant.
			store.branchBrands["branch-1"] = "brand-1"
			store.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusActive)
			tt.setup(store)
			r := NewResolver(store)

			got := r.Authorize(ctx, "user-1", BranchResource("branch-1"), tt.action)
			if got != tt.want {
				t.Errorf("Authorize() = %+v, want %+v", got, tt.want)
			}
			if _, hasDirect := store.branchMembers["user-1|branch-1"]; hasDirect && store.branchBrandCalls != 0 {
				t.Errorf("resolver consulted brand inheritance despite a direct branch membership")
			}
		})
	}
}

func TestAuthorize_BranchScope_Inheritance(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(*fakeStore)
		action Action
		want   Decision
	}{
		{
			// Scenario: active brand manager, no branch row -> staff authority
			name: "manager inherits staff and may operate",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBrandMember("user-1", "brand-1", BrandRoleManager, StatusActive)
			},
			action: ActionBranchOperate,
			want:   GrantedBranch(BranchRoleStaff),
		},
		{
			name: "inherited staff cannot update branch",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBrandMember("user-1", "brand-1", BrandRoleManager, StatusActive)
			},
			action: ActionBranchUpdate,
			want:   Denied(ReasonForbidden),
		},
		{
			name: "brand member inherits nothing",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBrandMember("user-1", "brand-1", BrandRoleMember, StatusActive)
			},
			action: ActionBranchRead,
			want:   Denied(ReasonForbidden),
		},
		{
			name: "suspended direct membership wins over active brand owner",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBranchMember("user-1", "branch-1", BranchRoleViewer, StatusSuspended)
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusActive)
			},
			action: ActionBranchRead,
			want:   Denied(ReasonInactive),
		},
		{
			name:   "unknown branch denies NOT_FOUND",
			setup:  func(s *fakeStore) {},
			action: ActionBranchRead,
			want:   Denied(ReasonNotFound),
		},
		{
			name: "no brand membership either denies NOT_MEMBER",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
			},
			action: ActionBranchRead,
			want:   Denied(ReasonNotMember),
		},
		{
			name: "inactive brand membership denies INACTIVE",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusSuspended)
			},
			action: ActionBranchRead,
			want:   Denied(ReasonInactive),
		},
		{
			name: "brand owner inherits branch admin",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusActive)
			},
			action: ActionBranchMemberManage,
			want:   GrantedBranch(BranchRoleAdmin),
		},
		{
			name: "branch lookup failure denies DB_ERROR",
			setup: func(s *fakeStore) {
				s.lookupErr = errBoom
				s.addBrandMember("user-1", "brand-1", BrandRoleOwner, StatusActive)
			},
			action: ActionBranchRead,
			want:   Denied(ReasonDBError),
		},
		{
			name: "brand membership failure during fallback denies DB_ERROR",
			setup: func(s *fakeStore) {
				s.branchBrands["branch-1"] = "brand-1"
				s.brandErr = errBoom
			},
			action: ActionBranchRead,
			want:   Denied(ReasonDBError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)
			r := NewResolver(store)

			got := r.Authorize(ctx, "user-1", BranchResource("branch-1"), tt.action)
			if got != tt.want {
				t.Errorf("Authorize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAuthorize_Idempotent(t *testing.T) {
	// Same inputs, unchanged store: identical decisions, no hidden state.
	ctx := context.Background()
	store := newFakeStore()
	store.branchBrands["branch-1"] = "brand-1"
	store.addBrandMember("user-1", "brand-1", BrandRoleManager, StatusActive)
	r := NewResolver(store)

	first := r.Authorize(ctx, "user-1", BranchResource("branch-1"), ActionBranchOperate)
	second := r.Authorize(ctx, "user-1", BranchResource("branch-1"), ActionBranchOperate)
	if first != second {
		t.Errorf("decisions differ across identical calls: %+v vs %+v", first, second)
	}
	if want := GrantedBranch(BranchRoleStaff); first != want {
		t.Errorf("Authorize() = %+v, want %+v", first, want)
	}
}
