package entitlement

import (
	"github.com/LabelNest/NestHR/internal/middleware"
	"github.com/LabelNest/NestHR/internal/rbac"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	entitlements := r.Group("/entitlements")
	entitlements.Use(middleware.AuthMiddleware())
	{
		entitlements.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetSummary)
	}
}
