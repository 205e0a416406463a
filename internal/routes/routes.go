package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/handlers"
	"github.com/mahammedjunedattar/cloth-invent/internal/metrics"
	"github.com/mahammedjunedattar/cloth-invent/internal/middleware"
)

type Dependencies struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Issuer  *auth.Issuer
	// Limiter throttles the item listing. Nil disables rate limiting.
	Limiter middleware.Limiter

	Items  *handlers.ItemHandler
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
}

func RegisterRoutes(router *gin.Engine, d Dependencies) {
	router.Use(
		middleware.RequestID(d.Logger),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(),
		middleware.SecurityHeaders(),
	)
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
		router.GET("/metrics", d.Metrics.Handler())
	}
	router.GET("/healthz", d.Health.Healthz)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", d.Auth.Signup)
		authGroup.POST("/login", d.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(d.Issuer))

		list := []gin.HandlerFunc{d.Items.ListItems}
		if d.Limiter != nil {
			var onLimited func()
			if d.Metrics != nil {
				onLimited = d.Metrics.RateLimited.Inc
			}
			list = append([]gin.HandlerFunc{middleware.RateLimit(d.Limiter, onLimited)}, list...)
		}

		protected.GET("/items", list...)
		protected.POST("/items", d.Items.CreateItem)
		protected.PATCH("/items", d.Items.UpdateStock)
		protected.GET("/items/:sku", d.Items.GetItem)
		protected.PUT("/items/:sku", d.Items.UpdateVariant)
		protected.DELETE("/items/:sku", d.Items.DeleteVariant)
		protected.GET("/inventory/stats", d.Items.GetStats)
	}
}
