package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletgate/core"
)

// RouterConfig carries the dependencies of the router
type RouterConfig struct {
	Authenticator  RequestAuthenticator
	Handlers       *Handlers
	Metrics        *Metrics
	AllowedOrigins []string
	Debug          bool
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	handlers := cfg.Handlers
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	router.GET("/health", handlers.Health)

	// Public routes
	auth := router.Group("/auth")
	{
		auth.GET("/wallets/:address", handlers.WalletAuthorization)
	}

	public := router.Group("/api")
	{
		public.GET("/network", handlers.Network)
		public.GET("/tokens/:mint", handlers.GetToken)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(cfg.Authenticator, cfg.Metrics))
	{
		api.GET("/me", handlers.Me)

		viewer := api.Group("", RequireRole(core.RoleViewer))
		viewer.GET("/tokens", handlers.ListTokens)

		editor := api.Group("", RequireRole(core.RoleEditor))
		editor.POST("/tokens", handlers.CreateToken)
		editor.PUT("/tokens/:mint", handlers.UpdateToken)
		editor.DELETE("/tokens/:mint", handlers.DeleteToken)
		editor.POST("/tokens/:mint/restore", handlers.RestoreToken)

		admin := api.Group("/users", RequireRole(core.RoleAdmin))
		admin.GET("", handlers.ListWallets)
		admin.POST("", handlers.AddWallet)
		admin.PUT("/:wallet", handlers.UpdateWallet)
		admin.DELETE("/:wallet", handlers.DeactivateWallet)
	}

	return router
}
