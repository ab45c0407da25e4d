package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// SimpleBrandRepository - SQL implementation of BrandRepository
// ============================================================================

// SimpleBrandRepository implements BrandRepository using SQL
type SimpleBrandRepository struct {
	db *sql.DB
}

// NewSimpleBrandRepository creates a new SimpleBrandRepository
func NewSimpleBrandRepository(db *sql.DB) *SimpleBrandRepository {
	return &SimpleBrandRepository{db: db}
}

// Ensure SimpleBrandRepository implements BrandRepository
var _ BrandRepository = (*SimpleBrandRepository)(nil)

// Create creates a new brand
func (r *SimpleBrandRepository) Create(ctx context.Context, brand *Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, slug, description, logo_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, brand.ID, brand.Name, brand.Slug, brand.Description, brand.LogoURL, brand.IsActive, brand.CreatedAt, brand.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

// Get retrieves a brand by ID
func (r *SimpleBrandRepository) Get(ctx context.Context, id string) (*Brand, error) {
	var brand Brand
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, COALESCE(description, ''), COALESCE(logo_url, ''), is_active, created_at, updated_at
		FROM brands
		WHERE id = $1
	`, id).Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.Description, &brand.LogoURL, &brand.IsActive, &brand.CreatedAt, &brand.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

// GetBySlug retrieves a brand by slug
func (r *SimpleBrandRepository) GetBySlug(ctx context.Context, slug string) (*Brand, error) {
	var brand Brand
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, COALESCE(description, ''), COALESCE(logo_url, ''), is_active, created_at, updated_at
		FROM brands
		WHERE slug = $1
	`, slug).Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.Description, &brand.LogoURL, &brand.IsActive, &brand.CreatedAt, &brand.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

// ListByUser returns brands the user holds a membership in
func (r *SimpleBrandRepository) ListByUser(ctx context.Context, userID string) ([]Brand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.slug, COALESCE(b.description, ''), COALESCE(b.logo_url, ''), b.is_active, b.created_at, b.updated_at
		FROM brands b
		JOIN brand_members m ON m.brand_id = b.id
		WHERE m.user_id = $1 AND b.is_active = true
		ORDER BY b.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user brands: %w", err)
	}
	defer rows.Close()

	return scanBrands(rows)
}

// Update updates a brand
func (r *SimpleBrandRepository) Update(ctx context.Context, brand *Brand) error {
	brand.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE brands
		SET name = $2, slug = $3, description = $4, logo_url = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`, brand.ID, brand.Name, brand.Slug, brand.Description, brand.LogoURL, brand.IsActive, brand.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a brand
func (r *SimpleBrandRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists checks if a slug is already taken
func (r *SimpleBrandRepository) SlugExists(ctx context.Context, slug string) bool {
	var exists bool
	r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM brands WHERE slug = $1)`, slug).Scan(&exists)
	return exists
}

// Helper function to scan brand rows
func scanBrands(rows *sql.Rows) ([]Brand, error) {
	brands := make([]Brand, 0) // Initialize to empty slice, not nil (JSON: [] not null)
	for rows.Next() {
		var brand Brand
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.Description, &brand.LogoURL, &brand.IsActive, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	return brands, rows.Err()
}

// ============================================================================
// SimpleBranchRepository - SQL implementation of BranchRepository
// ============================================================================

// SimpleBranchRepository implements BranchRepository using SQL
type SimpleBranchRepository struct {
	db *sql.DB
}

// NewSimpleBranchRepository creates a new SimpleBranchRepository
func NewSimpleBranchRepository(db *sql.DB) *SimpleBranchRepository {
	return &SimpleBranchRepository{db: db}
}

// Ensure SimpleBranchRepository implements BranchRepository
var _ BranchRepository = (*SimpleBranchRepository)(nil)

// Create creates a new branch
func (r *SimpleBranchRepository) Create(ctx context.Context, branch *Branch) error {
	if branch.ID == "" {
		branch.ID = uuid.New().String()
	}
	now := time.Now()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO branches (id, brand_id, name, slug, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, branch.ID, branch.BrandID, branch.Name, branch.Slug, branch.Address, branch.Phone, branch.IsActive, branch.CreatedAt, branch.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

// Get retrieves a branch by ID
func (r *SimpleBranchRepository) Get(ctx context.Context, id string) (*Branch, error) {
	var branch Branch
	err := r.db.QueryRowContext(ctx, `
		SELECT id, brand_id, name, slug, COALESCE(address, ''), COALESCE(phone, ''), is_active, created_at, updated_at
		FROM branches
		WHERE id = $1
	`, id).Scan(&branch.ID, &branch.BrandID, &branch.Name, &branch.Slug, &branch.Address, &branch.Phone, &branch.IsActive, &branch.CreatedAt, &branch.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &branch, nil
}

// ListByBrand returns all branches of a brand
func (r *SimpleBranchRepository) ListByBrand(ctx context.Context, brandID string) ([]Branch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, brand_id, name, slug, COALESCE(address, ''), COALESCE(phone, ''), is_active, created_at, updated_at
		FROM branches
		WHERE brand_id = $1 AND is_active = true
		ORDER BY name
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	return scanBranches(rows)
}

// Update updates a branch
func (r *SimpleBranchRepository) Update(ctx context.Context, branch *Branch) error {
	branch.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE branches
		SET name = $2, slug = $3, address = $4, phone = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`, branch.ID, branch.Name, branch.Slug, branch.Address, branch.Phone, branch.IsActive, branch.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a branch
func (r *SimpleBranchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExistsInBrand checks if a slug is already taken within a brand
func (r *SimpleBranchRepository) SlugExistsInBrand(ctx context.Context, brandID, slug string) bool {
	var exists bool
	r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM branches WHERE brand_id = $1 AND slug = $2)`, brandID, slug).Scan(&exists)
	return exists
}

// GetBrandID returns the owning brand of a branch
func (r *SimpleBranchRepository) GetBrandID(ctx context.Context, branchID string) (string, error) {
	var brandID string
	err := r.db.QueryRowContext(ctx, `SELECT brand_id FROM branches WHERE id = $1`, branchID).Scan(&brandID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get branch brand: %w", err)
	}
	return brandID, nil
}

// Helper function to scan branch rows
func scanBranches(rows *sql.Rows) ([]Branch, error) {
	branches := make([]Branch, 0)
	for rows.Next() {
		var branch Branch
		if err := rows.Scan(&branch.ID, &branch.BrandID, &branch.Name, &branch.Slug, &branch.Address, &branch.Phone, &branch.IsActive, &branch.CreatedAt, &branch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, branch)
	}
	return branches, rows.Err()
}

// ============================================================================
// Factory function for convenience
// ============================================================================

// NewSimpleBackend creates all simple implementations at once
func NewSimpleBackend(db *sql.DB) (*Resolver, MembershipManager, BrandRepository, BranchRepository) {
	return NewResolver(NewSimpleMembershipStore(db)),
		NewSimpleMembershipManager(db),
		NewSimpleBrandRepository(db),
		NewSimpleBranchRepository(db)
}
