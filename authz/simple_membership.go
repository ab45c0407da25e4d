package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SimpleMembershipManager implements MembershipManager using SQL
type SimpleMembershipManager struct {
	db *sql.DB
}

// NewSimpleMembershipManager creates a new SimpleMembershipManager
func NewSimpleMembershipManager(db *sql.DB) *SimpleMembershipManager {
	return &SimpleMembershipManager{db: db}
}

// Ensure SimpleMembershipManager implements MembershipManager
var _ MembershipManager = (*SimpleMembershipManager)(nil)

// AddBrandMember inserts a brand membership row.
// The unique (user_id, brand_id) constraint keeps at most one row per pair;
// re-adding an existing member refreshes role and status in place.
func (m *SimpleMembershipManager) AddBrandMember(ctx context.Context, userID, brandID string, role BrandRole, status MemberStatus, invitedBy string) error {
	now := time.Now()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO brand_members (id, user_id, brand_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		ON CONFLICT (user_id, brand_id)
		DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, uuid.New().String(), userID, brandID, role, status, invitedBy, now, now)

	if err != nil {
		return fmt.Errorf("failed to add brand membership: %w", err)
	}
	return nil
}

// UpdateBrandMemberRole changes a member's role within a brand
func (m *SimpleMembershipManager) UpdateBrandMemberRole(ctx context.Context, userID, brandID string, role BrandRole) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE brand_members
		SET role = $1, updated_at = $2
		WHERE user_id = $3 AND brand_id = $4
	`, role, time.Now(), userID, brandID)

	if err != nil {
		return fmt.Errorf("failed to update brand membership: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateBrandMemberStatus moves a brand membership through its lifecycle
func (m *SimpleMembershipManager) UpdateBrandMemberStatus(ctx context.Context, userID, brandID string, status MemberStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE brand_members
		SET status = $1, updated_at = $2
		WHERE user_id = $3 AND brand_id = $4
	`, status, time.Now(), userID, brandID)

	if err != nil {
		return fmt.Errorf("failed to update brand membership status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveBrandMember deletes a brand membership row
func (m *SimpleMembershipManager) RemoveBrandMember(ctx context.Context, userID, brandID string) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM brand_members WHERE user_id = $1 AND brand_id = $2
	`, userID, brandID)

	if err != nil {
		return fmt.Errorf("failed to remove brand membership: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBrandMembers returns all members of a brand, including user details
func (m *SimpleMembershipManager) GetBrandMembers(ctx context.Context, brandID string) ([]BrandMembership, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT
			m.id, m.user_id, m.brand_id, m.role, m.status,
			COALESCE(m.invited_by, ''), m.created_at, m.updated_at,
			COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM brand_members m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.brand_id = $1
		ORDER BY
			CASE m.role
				WHEN 'owner' THEN 1
				WHEN 'admin' THEN 2
				WHEN 'manager' THEN 3
				WHEN 'member' THEN 4
			END,
			m.created_at
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand members: %w", err)
	}
	defer rows.Close()

	return scanBrandMemberships(rows)
}

// GetUserBrandMemberships returns all brand memberships for a user
func (m *SimpleMembershipManager) GetUserBrandMemberships(ctx context.Context, userID string) ([]BrandMembership, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT
			m.id, m.user_id, m.brand_id, m.role, m.status,
			COALESCE(m.invited_by, ''), m.created_at, m.updated_at,
			'', ''
		FROM brand_members m
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user brand memberships: %w", err)
	}
	defer rows.Close()

	return scanBrandMemberships(rows)
}

// AddBranchMember inserts a branch membership row
func (m *SimpleMembershipManager) AddBranchMember(ctx context.Context, userID, branchID string, role BranchRole, status MemberStatus, invitedBy string) error {
	now := time.Now()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO branch_members (id, user_id, branch_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		ON CONFLICT (user_id, branch_id)
		DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, uuid.New().String(), userID, branchID, role, status, invitedBy, now, now)

	if err != nil {
		return fmt.Errorf("failed to add branch membership: %w", err)
	}
	return nil
}

// UpdateBranchMemberRole changes a member's role within a branch
func (m *SimpleMembershipManager) UpdateBranchMemberRole(ctx context.Context, userID, branchID string, role BranchRole) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE branch_members
		SET role = $1, updated_at = $2
		WHERE user_id = $3 AND branch_id = $4
	`, role, time.Now(), userID, branchID)

	if err != nil {
		return fmt.Errorf("failed to update branch membership: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateBranchMemberStatus moves a branch membership through its lifecycle
func (m *SimpleMembershipManager) UpdateBranchMemberStatus(ctx context.Context, userID, branchID string, status MemberStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE branch_members
		SET status = $1, updated_at = $2
		WHERE user_id = $3 AND branch_id = $4
	`, status, time.Now(), userID, branchID)

	if err != nil {
		return fmt.Errorf("failed to update branch membership status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveBranchMember deletes a branch membership row
func (m *SimpleMembershipManager) RemoveBranchMember(ctx context.Context, userID, branchID string) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM branch_members WHERE user_id = $1 AND branch_id = $2
	`, userID, branchID)

	if err != nil {
		return fmt.Errorf("failed to remove branch membership: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBranchMembers returns all members of a branch, including user details
func (m *SimpleMembershipManager) GetBranchMembers(ctx context.Context, branchID string) ([]BranchMembership, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT
			m.id, m.user_id, m.branch_id, m.role, m.status,
			COALESCE(m.invited_by, ''), m.created_at, m.updated_at,
			COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM branch_members m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.branch_id = $1
		ORDER BY
			CASE m.role
				WHEN 'branch_owner' THEN 1
				WHEN 'branch_admin' THEN 2
				WHEN 'staff' THEN 3
				WHEN 'viewer' THEN 4
			END,
			m.created_at
	`, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch members: %w", err)
	}
	defer rows.Close()

	return scanBranchMemberships(rows)
}

// Helper function to scan brand membership rows
func scanBrandMemberships(rows *sql.Rows) ([]BrandMembership, error) {
	memberships := make([]BrandMembership, 0)
	for rows.Next() {
		var m BrandMembership
		var role, status string
		if err := rows.Scan(&m.ID, &m.UserID, &m.BrandID, &role, &status, &m.InvitedBy, &m.CreatedAt, &m.UpdatedAt, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan brand membership: %w", err)
		}
		m.Role = BrandRole(role)
		m.Status = MemberStatus(status)
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// Helper function to scan branch membership rows
func scanBranchMemberships(rows *sql.Rows) ([]BranchMembership, error) {
	memberships := make([]BranchMembership, 0)
	for rows.Next() {
		var m BranchMembership
		var role, status string
		if err := rows.Scan(&m.ID, &m.UserID, &m.BranchID, &role, &status, &m.InvitedBy, &m.CreatedAt, &m.UpdatedAt, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan branch membership: %w", err)
		}
		m.Role = BranchRole(role)
		m.Status = MemberStatus(status)
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
