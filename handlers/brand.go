package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderdeck/orderdeck/authz"
)

type BrandHandler struct {
	Brands *authz.BrandService
}

func NewBrandHandler(brands *authz.BrandService) *BrandHandler {
	return &BrandHandler{Brands: brands}
}

// respondServiceError maps service-layer errors onto HTTP responses.
// Authorization denials already collapsed to ErrForbidden/ErrNotFound
// in the service, so the handler never sees raw decisions.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
	case errors.Is(err, authz.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, authz.ErrCannotRemoveSelf):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot remove yourself"})
	case errors.Is(err, authz.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Service error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateBrand creates a brand owned by the caller
func (h *BrandHandler) CreateBrand(c *gin.Context) {
	userID := c.GetString("user_id")

	var input authz.CreateBrandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brand, err := h.Brands.CreateBrand(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, brand)
}

// GetBrand returns a brand the caller can read
func (h *BrandHandler) GetBrand(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	brand, err := h.Brands.GetBrand(c.Request.Context(), userID, brandID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, brand)
}

// ListMyBrands returns every brand the caller belongs to
func (h *BrandHandler) ListMyBrands(c *gin.Context) {
	userID := c.GetString("user_id")

	brands, err := h.Brands.ListUserBrands(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brands": brands,
		"total":  len(brands),
	})
}

// UpdateBrand patches a brand
func (h *BrandHandler) UpdateBrand(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	var input authz.UpdateBrandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brand, err := h.Brands.UpdateBrand(c.Request.Context(), userID, brandID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, brand)
}

// GetBrandMembers lists the brand's members
func (h *BrandHandler) GetBrandMembers(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	members, err := h.Brands.GetBrandMembers(c.Request.Context(), userID, brandID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"total":   len(members),
	})
}

// InviteBrandMember invites a user into the brand
func (h *BrandHandler) InviteBrandMember(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	var input authz.InviteBrandMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Brands.InviteBrandMember(c.Request.Context(), userID, brandID, input); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invitation created"})
}

// AcceptBrandInvite activates the caller's pending invitation
func (h *BrandHandler) AcceptBrandInvite(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	if err := h.Brands.AcceptBrandInvite(c.Request.Context(), userID, brandID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// UpdateBrandMemberRole changes a member's role
func (h *BrandHandler) UpdateBrandMemberRole(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")
	targetID := c.Param("user_id")

	var body struct {
		Role authz.BrandRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Brands.UpdateBrandMemberRole(c.Request.Context(), userID, brandID, targetID, body.Role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// SuspendBrandMember suspends a member
func (h *BrandHandler) SuspendBrandMember(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")
	targetID := c.Param("user_id")

	if err := h.Brands.SuspendBrandMember(c.Request.Context(), userID, brandID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member suspended"})
}

// RemoveBrandMember removes a member
func (h *BrandHandler) RemoveBrandMember(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")
	targetID := c.Param("user_id")

	if err := h.Brands.RemoveBrandMember(c.Request.Context(), userID, brandID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
