// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/security"
	"logistix/internal/core/tenant"
	"logistix/internal/infrastructure/http/v1/handlers"
	"logistix/internal/infrastructure/http/v1/middleware"
	"logistix/pkg/logger"
)

// MetricsProvider records HTTP metrics and serves the scrape endpoint.
type MetricsProvider interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Release switches gin into release mode.
	Release bool

	// Logger for request logging
	Logger *logger.Logger

	// Tenants resolves X-Tenant-ID; wrap it in tenant.CachedRegistry.
	Tenants tenant.Registry

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator
	Cookie       handlers.CookieConfig

	AuthService     handlers.AuthService
	SettingsService handlers.SettingsService
	History         handlers.HistoryReader
	Numbers         corenum.Generator
	Trips           handlers.TripService
	Shipments       handlers.ShipmentService
	Invoices        handlers.InvoiceService

	// Health is served under /health.
	Health *handlers.HealthHandler

	// Metrics is optional; when set /metrics is exposed.
	Metrics MetricsProvider
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TenantResolver(cfg.Tenants))
	{
		registerAuthRoutes(v1, base, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator, cfg.Cookie.Name))

		registerNumberingRoutes(protected, base, cfg)
		registerLogisticsRoutes(protected, base, cfg)
		registerInvoiceRoutes(protected, base, cfg)
	}

	return router
}

// WithCompression gzips responses for clients that accept it.
func WithCompression(h http.Handler) http.Handler {
	return gzhttp.GzipHandler(h)
}

func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService, cfg.Cookie)

	auth := rg.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", middleware.Auth(cfg.JWTValidator, cfg.Cookie.Name), h.Me)
}

func registerNumberingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.SettingsService != nil {
		h := handlers.NewSettingsHandler(base, cfg.SettingsService, cfg.History)
		numbering := rg.Group("/settings/numbering")
		numbering.POST("/preview", middleware.RequirePermission(security.PermNumberingRead), h.Preview)
		numbering.GET("/:kind", middleware.RequirePermission(security.PermNumberingRead), h.GetTemplate)
		numbering.GET("/:kind/history", middleware.RequirePermission(security.PermNumberingRead), h.History)
		numbering.PUT("/:kind", middleware.RequirePermission(security.PermNumberingAdmin), h.SaveTemplate)
	}
	if cfg.Numbers != nil {
		h := handlers.NewNumberingHandler(base, cfg.Numbers, cfg.Trips)
		rg.POST("/numbering/:kind/next", middleware.RequirePermission(security.PermNumberingAdmin), h.Next)
	}
}

func registerLogisticsRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Trips != nil {
		h := handlers.NewTripHandler(base, cfg.Trips)
		trips := rg.Group("/trips")
		RegisterDocumentRoutes(trips, h, security.PermTripRead, security.PermTripWrite)
		trips.POST("/:id/status", middleware.RequirePermission(security.PermTripWrite), h.UpdateStatus)
	}
	if cfg.Shipments != nil {
		h := handlers.NewShipmentHandler(base, cfg.Shipments)
		rg.POST("/trips/:id/shipments", middleware.RequirePermission(security.PermShipmentWrite), h.Create)
		rg.GET("/shipments", middleware.RequirePermission(security.PermShipmentRead), h.List)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Invoices == nil {
		return
	}
	h := handlers.NewInvoiceHandler(base, cfg.Invoices)
	invoices := rg.Group("/invoices")
	RegisterDocumentRoutes(invoices, h, security.PermInvoiceRead, security.PermInvoiceCreate)
	invoices.POST("/:id/issue", middleware.RequirePermission(security.PermInvoiceCreate), h.Issue)
	invoices.POST("/:id/void", middleware.RequirePermission(security.PermInvoiceVoid), h.Void)
}
