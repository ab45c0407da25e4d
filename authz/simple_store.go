package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SimpleMembershipStore implements MembershipStore using direct SQL queries.
// This is the default in-process backend. It ONLY performs the three reads
// the resolver needs - no CRUD.
type SimpleMembershipStore struct {
	db *sql.DB
}

// NewSimpleMembershipStore creates a store backed by the given database connection
func NewSimpleMembershipStore(db *sql.DB) *SimpleMembershipStore {
	return &SimpleMembershipStore{db: db}
}

// Ensure SimpleMembershipStore implements MembershipStore
var _ MembershipStore = (*SimpleMembershipStore)(nil)

// GetBrandMembership returns the user's membership row for a brand
func (s *SimpleMembershipStore) GetBrandMembership(ctx context.Context, userID, brandID string) (*BrandMembership, error) {
	m := BrandMembership{UserID: userID, BrandID: brandID}
	var role, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, status FROM brand_members
		WHERE user_id = $1 AND brand_id = $2
	`, userID, brandID).Scan(&m.ID, &role, &status)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get brand membership: %w", err)
	}
	m.Role = BrandRole(role)
	m.Status = MemberStatus(status)
	return &m, nil
}

// GetBranchMembership returns the user's membership row for a branch
func (s *SimpleMembershipStore) GetBranchMembership(ctx context.Context, userID, branchID string) (*BranchMembership, error) {
	m := BranchMembership{UserID: userID, BranchID: branchID}
	var role, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, status FROM branch_members
		WHERE user_id = $1 AND branch_id = $2
	`, userID, branchID).Scan(&m.ID, &role, &status)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get branch membership: %w", err)
	}
	m.Role = BranchRole(role)
	m.Status = MemberStatus(status)
	return &m, nil
}

// GetBranchBrandID returns the owning brand of a branch
func (s *SimpleMembershipStore) GetBranchBrandID(ctx context.Context, branchID string) (string, error) {
	var brandID string
	err := s.db.QueryRowContext(ctx, `SELECT brand_id FROM branches WHERE id = $1`, branchID).Scan(&brandID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get branch brand: %w", err)
	}
	return brandID, nil
}

// CachedMembershipStore decorates a MembershipStore with a redis cache for
// the branch -> brand edge. A branch never moves between brands, so this
// cache cannot serve stale authority. Membership rows are always read fresh;
// the resolver itself stays cache-free.
type CachedMembershipStore struct {
	MembershipStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedMembershipStore wraps inner with a branch->brand cache.
func NewCachedMembershipStore(inner MembershipStore, rdb *redis.Client) *CachedMembershipStore {
	return &CachedMembershipStore{
		MembershipStore: inner,
		redis:           rdb,
		ttl:             24 * time.Hour,
	}
}

// GetBranchBrandID resolves the owning brand, consulting redis first.
// Cache failures are ignored: the source of truth is the inner store.
func (c *CachedMembershipStore) GetBranchBrandID(ctx context.Context, branchID string) (string, error) {
	key := "branch_brand:" + branchID
	if brandID, err := c.redis.Get(ctx, key).Result(); err == nil && brandID != "" {
		return brandID, nil
	}

	brandID, err := c.MembershipStore.GetBranchBrandID(ctx, branchID)
	if err != nil {
		return "", err
	}
	_ = c.redis.Set(ctx, key, brandID, c.ttl).Err()
	return brandID, nil
}
