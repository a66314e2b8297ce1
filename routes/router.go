package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/config"
	"github.com/salesboost/salesboost/controllers"
	"github.com/salesboost/salesboost/middleware"
	"github.com/salesboost/salesboost/services"
	"github.com/salesboost/salesboost/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record daily API activity after each request
	r.Use(middleware.ActivityRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// Engine services are shared across controllers
	hierarchy := services.NewHierarchyService(db)
	access := services.NewAccessService(db, hierarchy)
	earnings := services.NewEarningsService(db)
	validation := services.NewValidationService(db, access, earnings)

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db, hierarchy)
	campaignController := controllers.NewCampaignController(db)
	completionController := controllers.NewCompletionController(db)
	bonusController := controllers.NewBonusController(db)
	validationController := controllers.NewValidationController(db, hierarchy, validation)
	evidenceController := controllers.NewEvidenceController(db, access)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Signed download link carries its own grant, no session auth
	api.GET("/evidence/:id/download", evidenceController.Download)

	// Public platform stats
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/campaigns", campaignController.ListCampaigns)
	protected.GET("/campaigns/:id", campaignController.GetCampaign)
	protected.GET("/campaigns/:id/standing", validationController.GetStanding)
	protected.POST("/actions/:id/complete", completionController.CompleteAction)
	protected.GET("/completions", completionController.ListMyCompletions)
	protected.POST("/bonuses", bonusController.DeclareBonus)
	protected.GET("/bonuses", bonusController.ListMyBonuses)
	protected.POST("/evidence", evidenceController.Upload)
	protected.GET("/evidence/:id/access", evidenceController.Access)
	protected.DELETE("/evidence/:id", evidenceController.Delete)

	managers := protected.Group("")
	managers.Use(middleware.ManagerRequired())
	managers.GET("/team", userController.ListTeam)
	managers.PUT("/users/:id/manager", userController.ReassignManager)
	managers.POST("/campaigns", campaignController.CreateCampaign)
	managers.POST("/campaigns/:id/challenges", campaignController.CreateChallenge)
	managers.POST("/challenges/:id/actions", campaignController.CreateAction)
	managers.GET("/campaigns/:id/validations", validationController.ListValidations)
	managers.PUT("/campaigns/:id/validations/:userId", validationController.SetValidation)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
