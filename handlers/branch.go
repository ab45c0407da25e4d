package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orderdeck/orderdeck/authz"
)

type BranchHandler struct {
	Branches *authz.BranchService
}

func NewBranchHandler(branches *authz.BranchService) *BranchHandler {
	return &BranchHandler{Branches: branches}
}

// CreateBranch creates a branch under a brand
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	userID := c.GetString("user_id")

	var input authz.CreateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.BrandID = c.Param("brand_id")

	branch, err := h.Branches.CreateBranch(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

// GetBranch returns a branch the caller can read
func (h *BranchHandler) GetBranch(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")

	branch, err := h.Branches.GetBranch(c.Request.Context(), userID, branchID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

// ListBrandBranches lists the branches of a brand
func (h *BranchHandler) ListBrandBranches(c *gin.Context) {
	userID := c.GetString("user_id")
	brandID := c.Param("brand_id")

	branches, err := h.Branches.ListBrandBranches(c.Request.Context(), userID, brandID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branches": branches,
		"total":    len(branches),
	})
}

// UpdateBranch patches a branch
func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")

	var input authz.UpdateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	branch, err := h.Branches.UpdateBranch(c.Request.Context(), userID, branchID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

// GetBranchMembers lists the branch's members
func (h *BranchHandler) GetBranchMembers(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")

	members, err := h.Branches.GetBranchMembers(c.Request.Context(), userID, branchID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"total":   len(members),
	})
}

// InviteBranchMember invites an active brand member into the branch
func (h *BranchHandler) InviteBranchMember(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")

	var input authz.InviteBranchMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Branches.InviteBranchMember(c.Request.Context(), userID, branchID, input); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invitation created"})
}

// AcceptBranchInvite activates the caller's pending invitation
func (h *BranchHandler) AcceptBranchInvite(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")

	if err := h.Branches.AcceptBranchInvite(c.Request.Context(), userID, branchID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// UpdateBranchMemberRole changes a member's role
func (h *BranchHandler) UpdateBranchMemberRole(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")
	targetID := c.Param("user_id")

	var body struct {
		Role authz.BranchRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Branches.UpdateBranchMemberRole(c.Request.Context(), userID, branchID, targetID, body.Role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// SuspendBranchMember suspends a member
func (h *BranchHandler) SuspendBranchMember(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")
	targetID := c.Param("user_id")

	if err := h.Branches.SuspendBranchMember(c.Request.Context(), userID, branchID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member suspended"})
}

// RemoveBranchMember removes a member
func (h *BranchHandler) RemoveBranchMember(c *gin.Context) {
	userID := c.GetString("user_id")
	branchID := c.Param("branch_id")
	targetID := c.Param("user_id")

	if err := h.Branches.RemoveBranchMember(c.Request.Context(), userID, branchID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// IntakeOrder is the staff-side order intake endpoint. It sits behind the
// branch:operate guard, which resolves the caller's effective role first.
func (h *BranchHandler) IntakeOrder(c *gin.Context) {
	branchID := authz.GetBranchIDFromContext(c)
	role := authz.GetEffectiveRoleFromContext(c)

	var body struct {
		TableNumber string `json:"table_number,omitempty"`
		Note        string `json:"note,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"order_id":       uuid.New().String(),
		"branch_id":      branchID,
		"accepted_by":    c.GetString("user_id"),
		"effective_role": role,
		"table_number":   body.TableNumber,
		"note":           body.Note,
	})
}
