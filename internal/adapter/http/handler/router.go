package handler

import (
	"provenance-ledger/internal/adapter/http/middleware"
	"provenance-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ItemSvc        ports.ItemService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64 // 0 = 64 KiB
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 64 << 10
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	tagHandler := NewTagHandler(deps.ItemSvc)
	v1.GET("/tags/scan", tagHandler.Scan)

	// --- Operator routes (JWT) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	itemHandler := NewItemHandler(deps.ItemSvc)

	v1.POST("/product-lines", jwtAuth, itemHandler.CreateProductLine)

	items := v1.Group("/items", jwtAuth)
	{
		items.POST("", itemHandler.CreateItem)
		items.POST("/:id/transfers", itemHandler.Transfer)
		items.GET("/:id/verify", itemHandler.Verify)
		items.GET("/:id/history", itemHandler.History)
	}

	return r
}
