package routes

import (
	"net/http"

	"cedra_storefront/internal/handlers"
	"cedra_storefront/internal/metrics"
	"cedra_storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	JWTSecret []byte
	Redis     *redis.Client
	Metrics   *metrics.Metrics
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := middleware.AuthRequired(opts.JWTSecret)
	api := r.Group("/api")

	// Panier : l'ajout est ouvert aux visiteurs (article mis en attente)
	cart := api.Group("/cart")
	{
		optional := cart.Group("", middleware.OptionalAuth(opts.JWTSecret))
		optional.GET("", h.GetCart)
		optional.GET("/pending", h.GetPending)

		mutations := optional.Group("")
		if opts.Redis != nil {
			mutations.Use(middleware.RateLimit(opts.Redis, "cart", middleware.CartMaxRequests, middleware.RateLimitWindow))
		}
		mutations.POST("/items", h.AddToCart)
		mutations.PATCH("/items/:productId", h.UpdateCartItem)
		mutations.DELETE("/items/:productId", h.RemoveCartItem)
		mutations.DELETE("", h.ClearCart)

		cart.POST("/pending/replay", auth, h.ReplayPending)
		cart.GET("/ws", auth, h.CartWebSocket)
	}

	api.GET("/addresses", auth, h.ListAddresses)
	api.POST("/addresses", auth, h.CreateAddress)

	co := api.Group("/checkout", auth)
	if opts.Redis != nil {
		co.Use(middleware.RateLimit(opts.Redis, "checkout", middleware.CheckoutMaxRequests, middleware.RateLimitWindow))
	}
	{
		co.GET("", h.GetCheckout)
		co.POST("/advance", h.AdvanceCheckout)
		co.POST("/back", h.BackCheckout)
		co.POST("/goto", h.GoToStage)
		co.PUT("/address", h.SelectAddress)
		co.POST("/address/new", h.BeginNewAddress)
		co.POST("/address/confirm", h.ConfirmNewAddress)
		co.DELETE("/address/new", h.CancelNewAddress)
		co.POST("/payment", h.PlaceOrder)
		co.GET("/upi-qr", h.UPIQRCode)
	}

	ords := api.Group("/orders", auth)
	{
		ords.GET("", h.ListOrders)
		ords.GET("/:id", h.GetOrder)
		ords.PUT("/:id/status", h.UpdateOrderStatus)
	}

	vendor := api.Group("/vendor", auth, middleware.VendorRequired)
	{
		vendor.GET("/orders", h.ListOrders)
		vendor.GET("/dashboard", h.Dashboard)
	}

	admin := api.Group("/admin", auth, middleware.RequireAdmin)
	{
		admin.GET("/orders", h.ListOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.GET("/dashboard", h.Dashboard)
	}
}
