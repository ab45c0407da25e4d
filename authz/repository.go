package authz

import (
	"context"
	"time"
)

// Brand represents the top-level tenant entity (a restaurant chain).
type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Branch represents a single store location belonging to exactly one brand.
type Branch struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandRepository handles CRUD operations for brands.
// This is purely a data access layer - no authorization logic.
type BrandRepository interface {
	// Create creates a new brand
	Create(ctx context.Context, brand *Brand) error

	// Get retrieves a brand by ID
	Get(ctx context.Context, id string) (*Brand, error)

	// GetBySlug retrieves a brand by slug
	GetBySlug(ctx context.Context, slug string) (*Brand, error)

	// ListByUser returns brands the user holds a membership in
	ListByUser(ctx context.Context, userID string) ([]Brand, error)

	// Update updates a brand
	Update(ctx context.Context, brand *Brand) error

	// Delete deletes a brand (cascades to branches and memberships)
	Delete(ctx context.Context, id string) error

	// SlugExists checks if a slug is already taken
	SlugExists(ctx context.Context, slug string) bool
}

// BranchRepository handles CRUD operations for branches.
type BranchRepository interface {
	// Create creates a new branch
	Create(ctx context.Context, branch *Branch) error

	// Get retrieves a branch by ID
	Get(ctx context.Context, id string) (*Branch, error)

	// ListByBrand returns all branches of a brand
	ListByBrand(ctx context.Context, brandID string) ([]Branch, error)

	// Update updates a branch
	Update(ctx context.Context, branch *Branch) error

	// Delete deletes a branch
	Delete(ctx context.Context, id string) error

	// SlugExistsInBrand checks if a slug is already taken within a brand
	SlugExistsInBrand(ctx context.Context, brandID, slug string) bool

	// GetBrandID returns the owning brand of a branch
	GetBrandID(ctx context.Context, branchID string) (string, error)
}
