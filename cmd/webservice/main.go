package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"artmarket/notify"
	"artmarket/payment"
	"artmarket/payment/daraja"
	"artmarket/utils"
	"artmarket/web/controllers"
	"artmarket/web/db"
	"artmarket/web/middleware"
)

func init() {
	utils.LoadEnv()
	db.Connect()
	db.Sync()
}

func main() {
	sink := notify.MultiSink{&notify.DBSink{DB: db.DB}}
	if opsEmail := os.Getenv("OPS_EMAIL"); opsEmail != "" {
		sink = append(sink, &notify.EmailSink{To: opsEmail})
	}

	controllers.Pay = payment.New(db.DB, daraja.NewClientFromEnv(), sink)
	controllers.Notifier = sink

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{utils.Getenv("CORS_ORIGIN", "*")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	authLimiter := middleware.NewRateLimiter(0.25, 15) // 15 requests/min/IP
	authLimiter.StartCleanup(10*time.Minute, time.Hour)
	checkoutLimiter := middleware.NewRateLimiter(0.1, 6)
	checkoutLimiter.StartCleanup(10*time.Minute, time.Hour)

	r.GET("/api/health", controllers.Health)

	r.POST("/api/auth/register", authLimiter.Middleware(), controllers.Register)
	r.POST("/api/auth/login", authLimiter.Middleware(), controllers.Login)
	r.GET("/api/auth/me", middleware.RequireAuth, controllers.Me)

	r.GET("/api/artists", controllers.ListArtists)
	r.GET("/api/artists/:id", controllers.GetArtist)
	r.GET("/api/artworks", controllers.ListArtworks)
	r.GET("/api/artworks/:id", controllers.GetArtwork)
	r.GET("/api/delivery-options", controllers.ListDeliveryOptions)

	r.GET("/api/cart", middleware.RequireAuth, controllers.GetCart)
	r.POST("/api/cart/items", middleware.RequireAuth, controllers.AddToCart)
	r.PUT("/api/cart/items/:id", middleware.RequireAuth, controllers.UpdateCartItem)
	r.DELETE("/api/cart/items/:id", middleware.RequireAuth, controllers.RemoveCartItem)

	r.POST("/api/checkout", checkoutLimiter.Middleware(), middleware.RequireAuth, controllers.Checkout)
	r.GET("/api/payments/status/:checkoutRequestId", middleware.RequireAuth, controllers.PaymentStatus)
	r.POST("/api/payments/callback", controllers.DarajaCallback)

	r.GET("/api/orders", middleware.RequireAuth, controllers.ListOrders)
	r.GET("/api/orders/:id", middleware.RequireAuth, controllers.GetOrder)
	r.GET("/api/orders/:id/pickup-qr", middleware.RequireAuth, controllers.OrderPickupQR)

	r.GET("/api/notifications", middleware.RequireAuth, controllers.ListNotifications)
	r.PUT("/api/notifications/:id/read", middleware.RequireAuth, controllers.MarkNotificationRead)
	r.PUT("/api/notifications/read-all", middleware.RequireAuth, controllers.MarkAllNotificationsRead)

	admin := r.Group("/api/admin", middleware.RequireAuth, middleware.RequireAdmin)
	admin.GET("/orders", controllers.AdminListOrders)
	admin.PUT("/orders/:id/status", controllers.UpdateOrderStatus)
	admin.POST("/orders/:id/pickup", controllers.ConfirmPickup)
	admin.POST("/artists", controllers.CreateArtist)
	admin.POST("/artists/:id/deactivate", controllers.DeactivateArtist)
	admin.POST("/artists/:id/activate", controllers.ActivateArtist)
	admin.POST("/artworks", controllers.CreateArtwork)
	admin.PUT("/artworks/:id", controllers.UpdateArtwork)
	admin.DELETE("/artworks/:id", controllers.DeleteArtwork)
	admin.POST("/delivery-options", controllers.CreateDeliveryOption)

	r.Run(":" + utils.Getenv("GIN_PORT", "8080"))
}
