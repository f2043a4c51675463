package app

import (
	"toothquest_portal/docs"
	"toothquest_portal/internal/config"
	"toothquest_portal/internal/middleware"
	"toothquest_portal/internal/model"
	"toothquest_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.SessionMiddleware(s.sessions, cfg.Session.CookieName, cfg.Session.TTL))

	// 1. 公共路由(无需登录)
	registerPublicRoutes(api, c)

	// 2. 需要登录的路由
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware())
	{
		registerStudentRoutes(authGroup, c)

		// 3. 管理员路由
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		registerAdminRoutes(admin, c)
	}
}

func registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/login", c.auth.Login)
		auth.POST("/register", c.auth.Register)
		auth.POST("/access-code/validate", c.auth.ValidateAccessCode)
		auth.POST("/logout", c.auth.Logout)
	}
}

func registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	history := api.Group("/history")
	{
		history.GET("", c.history.GetHistory)
		history.PATCH("/view", c.history.UpdateView)
		history.POST("/refresh", c.history.Refresh)
		history.GET("/stats", c.history.Stats)
		history.POST("/import", c.history.Import)
		history.POST("/:id/favorite", c.history.ToggleFavorite)
		history.DELETE("/:id", c.history.Remove)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", c.notification.List)
		notifications.DELETE("/:id", c.notification.Dismiss)
	}
}

func registerAdminRoutes(admin *gin.RouterGroup, c *controllers) {
	reports := admin.Group("/reports")
	{
		reports.GET("", c.report.GetReports)
		reports.PATCH("/view", c.report.UpdateView)
		reports.PATCH("/:id", c.report.Resolve)
	}

	users := admin.Group("/users")
	{
		users.GET("", c.user.GetUsers)
		users.PATCH("/view", c.user.UpdateView)
	}
}
