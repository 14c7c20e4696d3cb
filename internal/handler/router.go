package handler

import (
	"reviewflow/internal/config"
	"reviewflow/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter wires middleware and routes.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}

		// gateway callbacks authenticate by signature, not by token
		api.POST("/payment/gateway/callback", h.GatewayCallback)

		authed := api.Group("")
		authed.Use(AuthRequired(cfg))
		{
			wallet := authed.Group("/wallet")
			{
				wallet.GET("", h.GetWallet)
				wallet.POST("/recharge", h.Recharge)
				wallet.GET("/transactions", h.ListTransactions)
			}

			seller := authed.Group("/seller")
			seller.Use(RoleRequired(model.RoleSeller))
			{
				seller.POST("/review-request", h.SubmitRequest)
				seller.GET("/review-request/list", h.ListSellerRequests)
				seller.POST("/review-request/pay/wallet", h.PayFromWallet)
			}

			authed.POST("/payment/gateway/initiate", RoleRequired(model.RoleSeller), h.InitiateGatewayPayment)

			user := authed.Group("/user")
			user.Use(RoleRequired(model.RoleUser))
			{
				user.GET("/tasks", h.ListMyTasks)
				user.POST("/task/step/submit", h.SubmitStepProof)
			}

			admin := authed.Group("/admin")
			admin.Use(RoleRequired(model.RoleAdmin))
			{
				admin.GET("/review-request/pending", h.ListPendingRequests)
				admin.POST("/review-request/decide", h.DecideRequest)
				admin.POST("/task/assign", h.AssignTask)
				admin.POST("/task/step/complete", h.CompleteStep)
			}
		}
	}

	r.GET("/sitemap.xml", h.Sitemap)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
