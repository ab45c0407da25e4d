package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/orderdeck/orderdeck/authz"
	"github.com/orderdeck/orderdeck/handlers"
	"github.com/orderdeck/orderdeck/services"
)

func NewGinRouter(pg *sql.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize services
	authService := services.NewAuthService(pg, rdb)

	// Initialize authz components (Brands, Branches, Memberships)
	resolver, membershipMgr, brandRepo, branchRepo := authz.NewSimpleBackend(pg)
	if rdb != nil {
		// Cache only the immutable branch -> brand edge; membership rows are
		// always read fresh so revocation takes effect immediately.
		store := authz.NewCachedMembershipStore(authz.NewSimpleMembershipStore(pg), rdb)
		resolver = authz.NewResolver(store)
	}
	store := resolver.Store()
	brandService := authz.NewBrandService(resolver, membershipMgr, store, brandRepo)
	branchService := authz.NewBranchService(resolver, membershipMgr, store, branchRepo)
	authzMiddleware := authz.NewMiddleware(resolver)

	// Initialize handlers
	authMiddleware := handlers.NewAuthMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	brandHandler := handlers.NewBrandHandler(brandService)
	branchHandler := handlers.NewBranchHandler(branchService)

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	// Authenticated routes
	api := r.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/me", authHandler.Me)
		api.PUT("/me", authHandler.UpdateMe)

		// Brands: CRUD and membership lifecycle. The services authorize
		// internally, so these routes only need authentication.
		api.POST("/brands", brandHandler.CreateBrand)
		api.GET("/brands", brandHandler.ListMyBrands)
		api.GET("/brands/:brand_id", brandHandler.GetBrand)
		api.PUT("/brands/:brand_id", brandHandler.UpdateBrand)
		api.GET("/brands/:brand_id/members", brandHandler.GetBrandMembers)
		api.POST("/brands/:brand_id/members", brandHandler.InviteBrandMember)
		api.POST("/brands/:brand_id/members/accept", brandHandler.AcceptBrandInvite)
		api.PUT("/brands/:brand_id/members/:user_id/role", brandHandler.UpdateBrandMemberRole)
		api.PUT("/brands/:brand_id/members/:user_id/suspend", brandHandler.SuspendBrandMember)
		api.DELETE("/brands/:brand_id/members/:user_id", brandHandler.RemoveBrandMember)

		// Branches
		api.POST("/brands/:brand_id/branches", branchHandler.CreateBranch)
		api.GET("/brands/:brand_id/branches", branchHandler.ListBrandBranches)
		api.GET("/branches/:branch_id", branchHandler.GetBranch)
		api.PUT("/branches/:branch_id", branchHandler.UpdateBranch)
		api.GET("/branches/:branch_id/members", branchHandler.GetBranchMembers)
		api.POST("/branches/:branch_id/members", branchHandler.InviteBranchMember)
		api.POST("/branches/:branch_id/members/accept", branchHandler.AcceptBranchInvite)
		api.PUT("/branches/:branch_id/members/:user_id/role", branchHandler.UpdateBranchMemberRole)
		api.PUT("/branches/:branch_id/members/:user_id/suspend", branchHandler.SuspendBranchMember)
		api.DELETE("/branches/:branch_id/members/:user_id", branchHandler.RemoveBranchMember)

		// Operational surface: guarded by the resolver directly so the
		// handler receives the effective role from context.
		api.POST("/branches/:branch_id/orders",
			authzMiddleware.RequireBranchAction(authz.ActionBranchOperate),
			branchHandler.IntakeOrder)
	}

	return r
}
