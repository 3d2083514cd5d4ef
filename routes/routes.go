package routes

import (
	"food-ordering-api/handlers"
	"food-ordering-api/metrics"
	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs besides the handlers themselves.
type Deps struct {
	Handler     *handlers.Handler
	Tokens      *middleware.TokenIssuer
	Users       middleware.UserLookup
	Metrics     *metrics.Metrics
	AuthLimiter *middleware.RateLimiter
	// UploadDir is served under UploadPrefix when images are stored locally.
	UploadDir    string
	UploadPrefix string
}

func SetupRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	authRequired := middleware.AuthRequired(d.Tokens, d.Users)

	r.GET("/health", h.Health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" && d.UploadPrefix != "" {
		r.Static(d.UploadPrefix, d.UploadDir)
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/state-machine", h.StateMachineInfo)
		public.GET("/menu", h.ListMenu)
		public.GET("/menu/:id", h.GetMenuItem)
	}

	// ── Auth ───────────────────────────────────────────────────────
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", d.AuthLimiter.Handler(), h.Register)
		auth.POST("/login", d.AuthLimiter.Handler(), h.Login)
		auth.POST("/logout", authRequired, h.Logout)
	}

	// ── Staff menu management ──────────────────────────────────────
	menu := r.Group("/api/menu")
	menu.Use(authRequired, middleware.RoleRequired(models.RoleStaff))
	{
		menu.POST("", h.CreateMenuItem)
		menu.PUT("/:id", h.UpdateMenuItem)
		menu.DELETE("/:id", h.DeleteMenuItem)
	}

	// ── Customer cart ──────────────────────────────────────────────
	cart := r.Group("/api/cart")
	cart.Use(authRequired, middleware.RoleRequired(models.RoleCustomer))
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.POST("/add", h.AddToCart)
		cart.PUT("/update", h.UpdateCart)
		cart.DELETE("/remove/:itemId", h.RemoveFromCart)
		cart.DELETE("/clear", h.ClearCart)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := r.Group("/api/orders")
	orders.Use(authRequired)
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", middleware.RoleRequired(models.RoleCustomer), h.Checkout)
		orders.PUT("/:id/status", middleware.RoleRequired(models.RoleStaff), h.UpdateOrderStatus)
	}

	// ── Settings (any role) ────────────────────────────────────────
	settings := r.Group("/api/settings")
	settings.Use(authRequired)
	{
		settings.GET("/profile", h.GetProfile)
		settings.PUT("/profile", h.UpdateProfile)
		settings.PUT("/password", h.ChangePassword)
	}

	// ── Admin user management ──────────────────────────────────────
	users := r.Group("/api/users")
	users.Use(authRequired, middleware.RoleRequired(models.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("/staff", h.CreateStaff)
		users.PUT("/staff/:id", h.UpdateStaff)
		users.DELETE("/:id", h.DeleteUser)
	}
}
