package authz

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey is the type for context keys to avoid collisions
type ContextKey string

const (
	// Context keys for storing authorization data
	ContextKeyBrandID       ContextKey = "brand_id"
	ContextKeyBranchID      ContextKey = "branch_id"
	ContextKeyEffectiveRole ContextKey = "effective_role"
)

// DecisionStatus maps a decision to the HTTP status the API surfaces.
// NOT_MEMBER and DB_ERROR are treated conservatively as 401 so an outsider
// cannot distinguish "denied" from "could not determine".
func DecisionStatus(d Decision) int {
	if d.OK {
		return http.StatusOK
	}
	switch d.Reason {
	case ReasonNotMember, ReasonDBError:
		return http.StatusUnauthorized
	case ReasonInactive, ReasonForbidden:
		return http.StatusForbidden
	case ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Middleware creates gin guards for brand- and branch-scoped routes.
type Middleware struct {
	Resolver *Resolver
}

// NewMiddleware creates authorization middleware backed by the resolver
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{Resolver: resolver}
}

// RequireBrandAction guards a route with a brand-scoped action.
// Usage: router.PUT("/brands/:brand_id", mw.RequireBrandAction(authz.ActionBrandUpdate), handler)
func (m *Middleware) RequireBrandAction(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User not authenticated",
			})
			return
		}

		brandID := c.Param("brand_id")
		if brandID == "" {
			brandID = c.Query("brand_id")
		}

		d := m.Resolver.Authorize(c.Request.Context(), userID, BrandResource(brandID), action)
		if !d.Allowed() {
			log.Printf("AUTHZ DENIED - User %s cannot %s on brand %s: %s", userID, action, brandID, d.Reason)
			abortWithDecision(c, d)
			return
		}

		c.Set(string(ContextKeyBrandID), brandID)
		c.Set(string(ContextKeyEffectiveRole), d.EffectiveRole)
		c.Next()
	}
}

// RequireBranchAction guards a route with a branch-scoped action.
// Usage: router.POST("/branches/:branch_id/orders", mw.RequireBranchAction(authz.ActionBranchOperate), handler)
func (m *Middleware) RequireBranchAction(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User not authenticated",
			})
			return
		}

		branchID := c.Param("branch_id")
		if branchID == "" {
			branchID = c.Query("branch_id")
		}

		d := m.Resolver.Authorize(c.Request.Context(), userID, BranchResource(branchID), action)
		if !d.Allowed() {
			log.Printf("AUTHZ DENIED - User %s cannot %s on branch %s: %s", userID, action, branchID, d.Reason)
			abortWithDecision(c, d)
			return
		}

		c.Set(string(ContextKeyBranchID), branchID)
		c.Set(string(ContextKeyEffectiveRole), d.EffectiveRole)
		c.Next()
	}
}

func abortWithDecision(c *gin.Context, d Decision) {
	status := DecisionStatus(d)
	message := "You don't have permission to perform this action"
	switch d.Reason {
	case ReasonNotMember, ReasonDBError:
		message = "You don't have access to this resource"
	case ReasonInactive:
		message = "Your membership is not active"
	case ReasonNotFound:
		message = "Resource not found"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   string(d.Reason),
		"message": message,
	})
}

// GetBrandIDFromContext retrieves the brand ID set by the middleware
func GetBrandIDFromContext(c *gin.Context) string {
	return c.GetString(string(ContextKeyBrandID))
}

// GetBranchIDFromContext retrieves the branch ID set by the middleware
func GetBranchIDFromContext(c *gin.Context) string {
	return c.GetString(string(ContextKeyBranchID))
}

// GetEffectiveRoleFromContext retrieves the role the decision was granted with
func GetEffectiveRoleFromContext(c *gin.Context) string {
	return c.GetString(string(ContextKeyEffectiveRole))
}
