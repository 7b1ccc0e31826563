package carryforward

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
	runs := r.Group("/carry-forward")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("/runs", middleware.RBACAuthorize(rbacService, "carryforward", "read"), handler.GetRuns)
		runs.POST("/runs", middleware.RBACAuthorize(rbacService, "carryforward", "run"), handler.Run)
	}
}
