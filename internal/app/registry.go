package app

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/LabelNest/NestHR/internal/auth"
	"github.com/LabelNest/NestHR/internal/carryforward"
	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/entitlement"
	"github.com/LabelNest/NestHR/internal/leaverequest"
	"github.com/LabelNest/NestHR/internal/leavetype"
	"github.com/LabelNest/NestHR/internal/messaging/kafka"
	"github.com/LabelNest/NestHR/internal/rbac"
	"github.com/LabelNest/NestHR/internal/rbac/infra"
	"github.com/LabelNest/NestHR/internal/shared/counter"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	registry := leavetype.NewRegistry()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	entitlementRepo := entitlement.NewRepository(gormDB)
	leaveRepo := leaverequest.NewRepository(gormDB)
	carryForwardRepo := carryforward.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	modelPath := os.Getenv("RBAC_MODEL_PATH")
	if modelPath == "" {
		modelPath = filepath.Join("internal", "rbac", "infra", "model.conf")
	}
	enforcer, err := infra.NewEnforcer(modelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	entitlementService := entitlement.NewService(db, entitlementRepo, registry, rdb)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, entitlementRepo, outboxRepo, registry)
	dayCounter := leaverequest.NewDayCounter(os.Getenv("LEAVE_DAY_COUNTING"))
	leaveService := leaverequest.NewService(db, leaveRepo, entitlementRepo, entitlementService, employeeRepo, registry, dayCounter, outboxRepo)
	carryForwardService := carryforward.NewService(db, carryForwardRepo, employeeRepo, entitlementRepo, entitlementService, registry, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	entitlementHandler := entitlement.NewHandler(entitlementService)
	leaveHandler := leaverequest.NewHandler(leaveService)
	carryForwardHandler := carryforward.NewHandler(carryForwardService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		entitlement.RegisterRoutes(api, entitlementHandler, rbacService)
		leaverequest.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		carryforward.RegisterRoutes(api, carryForwardHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
