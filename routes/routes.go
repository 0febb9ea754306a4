package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	libredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/config"
	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/auth"
	"github.com/ledgerly/ledgerly-backend/internal/directory"
	"github.com/ledgerly/ledgerly-backend/internal/importledger"
	"github.com/ledgerly/ledgerly-backend/internal/organization"
	"github.com/ledgerly/ledgerly-backend/middleware"
)

// Setup wires every repository, service and handler and registers all
// routes on r. Dependencies are passed in explicitly so tests can run the
// full router against an in-memory database.
func Setup(r *gin.Engine, db *gorm.DB, cfg *config.Config, roles *auth.RoleSet, rdb *libredis.Client, publisher auditlog.Publisher, mailer auth.Mailer) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo, publisher)
	auditHandler := auditlog.NewHandler(auditSvc)

	orgRepo := organization.NewRepository(db)
	orgSvc := organization.NewService(orgRepo, auditSvc)
	orgHandler := organization.NewHandler(orgSvc)

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, orgRepo, roles, mailer, auditSvc, cfg)
	authHandler := auth.NewHandler(authSvc)

	dirRepo := directory.NewRepository(db)
	dirSvc := directory.NewService(dirRepo, roles, auditSvc)
	dirHandler := directory.NewHandler(dirSvc)

	importRepo := importledger.NewRepository(db)
	importSvc := importledger.NewService(importRepo, importledger.NewExporter(), auditSvc)
	importHandler := importledger.NewHandler(importSvc)

	r.GET("/healthz", func(c *gin.Context) {
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		if rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RequestID())
	api.Use(middleware.AuditMiddleware())
	api.Use(middleware.RateLimiter(rdb))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.POST("/new-password", authHandler.NewPassword)
	}
	// legacy client alias
	api.POST("/createuser", authHandler.Register)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	protected.GET("/auth/profile", authHandler.Profile)

	adminOnly := middleware.RBACMiddleware(auth.RoleSuperAdmin, auth.RoleAdmin)

	protected.GET("/users", dirHandler.ListUsers)
	protected.PUT("/users/:id", adminOnly, dirHandler.UpdateUser)
	protected.DELETE("/users/:id", adminOnly, dirHandler.DeleteUser)

	protected.GET("/orgs", orgHandler.ListOrganizations)
	protected.POST("/orgs", adminOnly, orgHandler.CreateOrganization)
	protected.POST("/createorg", adminOnly, orgHandler.CreateOrganization)
	protected.PUT("/orgs/:id", adminOnly, orgHandler.UpdateOrganization)
	protected.DELETE("/orgs/:id", adminOnly, orgHandler.DeleteOrganization)

	protected.POST("/upload", importHandler.Upload)
	protected.GET("/past-imports/:orgId", importHandler.PastImports)
	protected.GET("/past-imports/:orgId/export", importHandler.ExportImports)

	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(auth.RoleSuperAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}
