package authz

import (
	"testing"
)

func TestBrandPolicyAllows(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		role   BrandRole
		want   bool
	}{
		// brand:read - every role
		{"owner can read brand", ActionBrandRead, BrandRoleOwner, true},
		{"admin can read brand", ActionBrandRead, BrandRoleAdmin, true},
		{"manager can read brand", ActionBrandRead, BrandRoleManager, true},
		{"member can read brand", ActionBrandRead, BrandRoleMember, true},

		// brand:update - owner, admin
		{"owner can update brand", ActionBrandUpdate, BrandRoleOwner, true},
		{"admin can update brand", ActionBrandUpdate, BrandRoleAdmin, true},
		{"manager cannot update brand", ActionBrandUpdate, BrandRoleManager, false},
		{"member cannot update brand", ActionBrandUpdate, BrandRoleMember, false},

		// brand:branch_create - owner, admin
		{"owner can create branch", ActionBranchCreate, BrandRoleOwner, true},
		{"admin can create branch", ActionBranchCreate, BrandRoleAdmin, true},
		{"manager cannot create branch", ActionBranchCreate, BrandRoleManager, false},
		{"member cannot create branch", ActionBranchCreate, BrandRoleMember, false},

		// brand:member_manage - owner, admin
		{"owner can manage members", ActionBrandMemberManage, BrandRoleOwner, true},
		{"admin can manage members", ActionBrandMemberManage, BrandRoleAdmin, true},
		{"manager cannot manage members", ActionBrandMemberManage, BrandRoleManager, false},
		{"member cannot manage members", ActionBrandMemberManage, BrandRoleMember, false},

		// Missing table entries deny, never allow
		{"unknown action denies owner", Action("brand:nuke"), BrandRoleOwner, false},
		{"invalid role denies", ActionBrandRead, BrandRole("invalid"), false},
		{"empty role denies", ActionBrandRead, BrandRole(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BrandPolicyAllows(tt.action, tt.role)
			if got != tt.want {
				t.Errorf("BrandPolicyAllows(%v, %v) = %v, want %v", tt.action, tt.role, got, tt.want)
			}
		})
	}
}

func TestBranchPolicyAllows(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		role   BranchRole
		want   bool
	}{
		// branch:read - every role
		{"branch owner can read", ActionBranchRead, BranchRoleOwner, true},
		{"branch admin can read", ActionBranchRead, BranchRoleAdmin, true},
		{"staff can read", ActionBranchRead, BranchRoleStaff, true},
		{"viewer can read", ActionBranchRead, BranchRoleViewer, true},

		// branch:update - branch owner, branch admin
		{"branch owner can update", ActionBranchUpdate, BranchRoleOwner, true},
		{"branch admin can update", ActionBranchUpdate, BranchRoleAdmin, true},
		{"staff cannot update", ActionBranchUpdate, BranchRoleStaff, false},
		{"viewer cannot update", ActionBranchUpdate, BranchRoleViewer, false},

		// branch:member_manage - branch owner, branch admin
		{"branch owner can manage members", ActionBranchMemberManage, BranchRoleOwner, true},
		{"branch admin can manage members", ActionBranchMemberManage, BranchRoleAdmin, true},
		{"staff cannot manage members", ActionBranchMemberManage, BranchRoleStaff, false},
		{"viewer cannot manage members", ActionBranchMemberManage, BranchRoleViewer, false},

		// branch:operate - everyone but viewer
		{"branch owner can operate", ActionBranchOperate, BranchRoleOwner, true},
		{"branch admin can operate", ActionBranchOperate, BranchRoleAdmin, true},
		{"staff can operate", ActionBranchOperate, BranchRoleStaff, true},
		{"viewer cannot operate", ActionBranchOperate, BranchRoleViewer, false},

		{"unknown action denies branch owner", Action("branch:nuke"), BranchRoleOwner, false},
		{"invalid role denies", ActionBranchRead, BranchRole("invalid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BranchPolicyAllows(tt.action, tt.role)
			if got != tt.want {
				t.Errorf("BranchPolicyAllows(%v, %v) = %v, want %v", tt.action, tt.role, got, tt.want)
			}
		})
	}
}

func TestMapBrandRoleToBranchRole(t *testing.T) {
	tests := []struct {
		name      string
		brandRole BrandRole
		want      BranchRole
		wantOK    bool
	}{
		{"owner maps to branch admin", BrandRoleOwner, BranchRoleAdmin, true},
		{"admin maps to branch admin", BrandRoleAdmin, BranchRoleAdmin, true},
		{"manager maps to staff", BrandRoleManager, BranchRoleStaff, true},
		{"member has no branch authority", BrandRoleMember, "", false},
		{"empty has no branch authority", BrandRole(""), "", false},
		{"invalid has no branch authority", BrandRole("invalid"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapBrandRoleToBranchRole(tt.brandRole)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MapBrandRoleToBranchRole(%v) = (%v, %v), want (%v, %v)", tt.brandRole, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestActionScope(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   Scope
		wantOK bool
	}{
		{"brand read is brand scoped", ActionBrandRead, ScopeBrand, true},
		{"brand update is brand scoped", ActionBrandUpdate, ScopeBrand, true},
		{"branch create is brand scoped", ActionBranchCreate, ScopeBrand, true},
		{"brand member manage is brand scoped", ActionBrandMemberManage, ScopeBrand, true},
		{"branch read is branch scoped", ActionBranchRead, ScopeBranch, true},
		{"branch update is branch scoped", ActionBranchUpdate, ScopeBranch, true},
		{"branch member manage is branch scoped", ActionBranchMemberManage, ScopeBranch, true},
		{"branch operate is branch scoped", ActionBranchOperate, ScopeBranch, true},
		{"unknown action is unclassifiable", Action("orders:refund"), "", false},
		{"empty action is unclassifiable", Action(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActionScope(tt.action)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ActionScope(%v) = (%v, %v), want (%v, %v)", tt.action, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestActionCatalogIsPartitioned(t *testing.T) {
	// The two catalogs must be disjoint and the policy tables must cover
	// every declared action.
	for a := range BrandActions {
		if BranchActions[a] {
			t.Errorf("action %v present in both catalogs", a)
		}
		if _, ok := BrandPolicy[a]; !ok {
			t.Errorf("brand action %v missing from BrandPolicy", a)
		}
	}
	for a := range BranchActions {
		if _, ok := BranchPolicy[a]; !ok {
			t.Errorf("branch action %v missing from BranchPolicy", a)
		}
	}
}

func TestMemberStatusIsActive(t *testing.T) {
	tests := []struct {
		status MemberStatus
		want   bool
	}{
		{StatusActive, true},
		{StatusInvited, false},
		{StatusSuspended, false},
		{StatusLeft, false},
		{MemberStatus(""), false},
		{MemberStatus("deleted"), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsActive(); got != tt.want {
			t.Errorf("MemberStatus(%q).IsActive() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRoleConstants(t *testing.T) {
	// Role values are wire/database values; keep them pinned
	if BrandRoleOwner != "owner" || BrandRoleAdmin != "admin" || BrandRoleManager != "manager" || BrandRoleMember != "member" {
		t.Errorf("brand role constants changed: %v %v %v %v", BrandRoleOwner, BrandRoleAdmin, BrandRoleManager, BrandRoleMember)
	}
	if BranchRoleOwner != "branch_owner" || BranchRoleAdmin != "branch_admin" || BranchRoleStaff != "staff" || BranchRoleViewer != "viewer" {
		t.Errorf("branch role constants changed: %v %v %v %v", BranchRoleOwner, BranchRoleAdmin, BranchRoleStaff, BranchRoleViewer)
	}
}
