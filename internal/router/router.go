package router

import (
	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/handler"
	"github.com/blues/ivp/internal/logic"
	"github.com/blues/ivp/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, rc cache.ResultCache, uploader storage.Uploader, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "investment-platform",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 产品相关路由
		productLogic := logic.NewProductLogic(db, rc, uploader, cfg)
		productHandler := handler.NewProductHandler(productLogic)
		products := v1.Group("/products")
		{
			products.POST("", productHandler.CreateProduct)
			products.GET("", productHandler.ListProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.PUT("/bulk", productHandler.BulkUpdateProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/share", productHandler.ShareProduct)
		}

		// 认购相关路由
		pledgeLogic := logic.NewPledgeLogic(db, rc)
		pledgeHandler := handler.NewPledgeHandler(pledgeLogic)
		products.GET("/:id/pledges", pledgeHandler.GetProductPledges)
		pledges := v1.Group("/pledges")
		{
			pledges.POST("", pledgeHandler.CreatePledge)
			pledges.GET("/:id", pledgeHandler.GetPledge)
			pledges.PUT("/:id/payment-status", pledgeHandler.UpdatePaymentStatus)
		}

		// 分析相关路由
		analyticsLogic := logic.NewAnalyticsLogic(db, rc, cfg)
		analyticsHandler := handler.NewAnalyticsHandler(analyticsLogic)
		v1.GET("/analytics/funding", analyticsHandler.GetFundingAnalytics)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
