package router

import (
	"github.com/Anwarisbased/laravelCR-sub000/internal/middleware"
	"github.com/Anwarisbased/laravelCR-sub000/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	me := users.Group("/me", middleware.AuthMiddleware())
	me.GET("", handler.GetProfile)
	me.PUT("", handler.Update)
	me.DELETE("", handler.Delete)
}

func SetupScanRoutes(api *echo.Group, handler *rest.ScanHandler) {
	api.POST("/claims", handler.UnauthenticatedClaim)

	scans := api.Group("/scans", middleware.AuthMiddleware())
	scans.POST("", handler.Scan)
	scans.POST("/finalize", handler.FinalizeClaim)
}

func SetupPointsRoutes(api *echo.Group, handler *rest.PointsHandler) {
	rewards := api.Group("/rewards", middleware.AuthMiddleware())
	rewards.GET("", handler.Catalog)
	rewards.POST("/redeem", handler.Redeem)

	api.POST("/points/grant", handler.Grant, middleware.AuthMiddleware(), middleware.AdminOnly())
}

func SetupAchievementRoutes(api *echo.Group, handler *rest.AchievementHandler) {
	achievements := api.Group("/achievements", middleware.AuthMiddleware())
	achievements.GET("", handler.List)
	achievements.GET("/mine", handler.Mine)
}

func SetupHistoryRoutes(api *echo.Group, handler *rest.HistoryHandler) {
	history := api.Group("/history", middleware.AuthMiddleware())
	history.GET("/actions", handler.Actions)
	history.GET("/orders", handler.Orders)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.PUT("/ranks", handler.UpsertRank)
	admin.PUT("/achievements", handler.UpsertAchievement)
	admin.PUT("/products", handler.UpsertProduct)
	admin.POST("/codes", handler.GenerateCodes)
}
