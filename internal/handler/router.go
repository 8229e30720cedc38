package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"exampay/internal/config"
	"exampay/internal/infrastructure/lock"
	"exampay/internal/infrastructure/metrics"
	"exampay/internal/payme"
	"exampay/internal/repository"
	"exampay/internal/service"
)

// SetupRouter wires middleware, the platform API and the gateway webhook.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, cfg)

	merchant := payme.NewMerchantService(
		cfg.Payme,
		repository.NewTransactionRepository(db),
		repository.NewOrderRepository(db),
		service.NewEntitlementService(db, cfg),
		lock.NewRedisLocker(rdb),
	)
	webhook := payme.NewHandler(cfg.Payme, merchant, metrics.NewWebhookMetrics())

	// Payme calls this from its side; auth is Basic against the merchant
	// key, not the platform JWT.
	r.POST("/payme/endpoint", webhook.Endpoint)

	api := r.Group("/api/v1")
	{
		api.GET("/plans", h.ListPlans)

		orders := api.Group("/orders")
		orders.Use(AuthMiddleware(cfg.JWT))
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
		}

		support := api.Group("/support")
		support.Use(AuthMiddleware(cfg.JWT))
		{
			support.GET("/transaction", h.GetTransaction)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
