// Package authz implements role-based access control for the brand/branch
// hierarchy. It is split into separated concerns:
// - Resolver: answers "may this user perform this action here?" and nothing else
// - MembershipStore: the three reads the resolver needs (swappable backend)
// - MembershipManager: the write side of memberships
// - Repositories: CRUD for Brand/Branch data
package authz

// BrandRole represents a user's role within a brand (the tenant).
type BrandRole string

const (
	BrandRoleOwner   BrandRole = "owner"   // Full control, assigned at brand creation
	BrandRoleAdmin   BrandRole = "admin"   // Manage members, settings, branches
	BrandRoleManager BrandRole = "manager" // Day-to-day operations across branches
	BrandRoleMember  BrandRole = "member"  // Read-only brand access
)

// BranchRole represents a user's role within a single branch.
type BranchRole string

const (
	BranchRoleOwner  BranchRole = "branch_owner"
	BranchRoleAdmin  BranchRole = "branch_admin"
	BranchRoleStaff  BranchRole = "staff"
	BranchRoleViewer BranchRole = "viewer"
)

// MemberStatus represents the lifecycle state of a membership row.
type MemberStatus string

const (
	StatusInvited   MemberStatus = "invited"
	StatusActive    MemberStatus = "active"
	StatusSuspended MemberStatus = "suspended"
	StatusLeft      MemberStatus = "left"
)

// IsActive reports whether a membership with this status is usable for
// authorization. This is the only place "usable membership" is defined;
// every check routes through it.
func (s MemberStatus) IsActive() bool {
	return s == StatusActive
}

// Scope identifies whether an action applies at the brand or the branch level.
type Scope string

const (
	ScopeBrand  Scope = "brand"
	ScopeBranch Scope = "branch"
)

// Action represents an operation that can be performed on a brand or branch.
type Action string

const (
	// Brand-scoped actions
	ActionBrandRead         Action = "brand:read"
	ActionBrandUpdate       Action = "brand:update"
	ActionBranchCreate      Action = "brand:branch_create"
	ActionBrandMemberManage Action = "brand:member_manage"

	// Branch-scoped actions
	ActionBranchRead         Action = "branch:read"
	ActionBranchUpdate       Action = "branch:update"
	ActionBranchMemberManage Action = "branch:member_manage"
	ActionBranchOperate      Action = "branch:operate" // process orders, run the store
)

// BrandActions and BranchActions partition the catalog by required scope.
// An action present in neither set is unclassifiable and always denied.
var BrandActions = map[Action]bool{
	ActionBrandRead:         true,
	ActionBrandUpdate:       true,
	ActionBranchCreate:      true,
	ActionBrandMemberManage: true,
}

var BranchActions = map[Action]bool{
	ActionBranchRead:         true,
	ActionBranchUpdate:       true,
	ActionBranchMemberManage: true,
	ActionBranchOperate:      true,
}

// ActionScope returns the scope an action requires. ok is false for actions
// outside the catalog.
func ActionScope(a Action) (Scope, bool) {
	if BrandActions[a] {
		return ScopeBrand, true
	}
	if BranchActions[a] {
		return ScopeBranch, true
	}
	return "", false
}

// Permission matrices define which roles may perform each action.
// Keyed by action so that a missing entry means "no role authorized".

// BrandPolicy is the permission table for brand-scoped actions.
var BrandPolicy = map[Action]map[BrandRole]bool{
	ActionBrandRead: {
		BrandRoleOwner:   true,
		BrandRoleAdmin:   true,
		BrandRoleManager: true,
		BrandRoleMember:  true,
	},
	ActionBrandUpdate: {
		BrandRoleOwner: true,
		BrandRoleAdmin: true,
	},
	ActionBranchCreate: {
		BrandRoleOwner: true,
		BrandRoleAdmin: true,
	},
	ActionBrandMemberManage: {
		BrandRoleOwner: true,
		BrandRoleAdmin: true,
	},
}

// BranchPolicy is the permission table for branch-scoped actions.
var BranchPolicy = map[Action]map[BranchRole]bool{
	ActionBranchRead: {
		BranchRoleOwner:  true,
		BranchRoleAdmin:  true,
		BranchRoleStaff:  true,
		BranchRoleViewer: true,
	},
	ActionBranchUpdate: {
		BranchRoleOwner: true,
		BranchRoleAdmin: true,
	},
	ActionBranchMemberManage: {
		BranchRoleOwner: true,
		BranchRoleAdmin: true,
	},
	ActionBranchOperate: {
		BranchRoleOwner: true,
		BranchRoleAdmin: true,
		BranchRoleStaff: true,
	},
}

// BrandPolicyAllows checks the brand permission table. Unknown actions and
// unknown roles are denied.
func BrandPolicyAllows(action Action, role BrandRole) bool {
	if perms, ok := BrandPolicy[action]; ok {
		return perms[role]
	}
	return false
}

// BranchPolicyAllows checks the branch permission table. Unknown actions and
// unknown roles are denied.
func BranchPolicyAllows(action Action, role BranchRole) bool {
	if perms, ok := BranchPolicy[action]; ok {
		return perms[role]
	}
	return false
}

// MapBrandRoleToBranchRole maps a brand role to the branch role it is treated
// as when the user has no direct branch membership. ok is false when the brand
// role carries no branch-level authority (plain members don't inherit).
func MapBrandRoleToBranchRole(role BrandRole) (BranchRole, bool) {
	switch role {
	case BrandRoleOwner, BrandRoleAdmin:
		return BranchRoleAdmin, true
	case BrandRoleManager:
		return BranchRoleStaff, true
	default:
		return "", false
	}
}

// DenyReason classifies why an authorization request was refused.
type DenyReason string

const (
	ReasonNotMember DenyReason = "NOT_MEMBER" // no membership row at the requested scope
	ReasonInactive  DenyReason = "INACTIVE"   // membership exists but is not active
	ReasonForbidden DenyReason = "FORBIDDEN"  // role does not authorize the action
	ReasonNotFound  DenyReason = "NOT_FOUND"  // missing identifier or unknown branch
	ReasonDBError   DenyReason = "DB_ERROR"   // membership store could not be queried
)

// Decision is the resolver's output. A granted decision carries the scope it
// was decided at and the role that authorized it (direct or inherited);
// a denied decision carries exactly one reason.
type Decision struct {
	OK            bool       `json:"ok"`
	Scope         Scope      `json:"scope,omitempty"`
	EffectiveRole string     `json:"effective_role,omitempty"`
	Reason        DenyReason `json:"reason,omitempty"`
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d.OK }

// GrantedBrand builds a granted decision for a brand-scoped action.
func GrantedBrand(role BrandRole) Decision {
	return Decision{OK: true, Scope: ScopeBrand, EffectiveRole: string(role)}
}

// GrantedBranch builds a granted decision for a branch-scoped action.
func GrantedBranch(role BranchRole) Decision {
	return Decision{OK: true, Scope: ScopeBranch, EffectiveRole: string(role)}
}

// Denied builds a denied decision with the given reason.
func Denied(reason DenyReason) Decision {
	return Decision{Reason: reason}
}
