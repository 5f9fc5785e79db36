package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentfunnel/internal/config"
	"rentfunnel/internal/domain/admin"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/domain/auth"
	"rentfunnel/internal/domain/catalog"
	"rentfunnel/internal/domain/favorite"
	"rentfunnel/internal/domain/lead"
	"rentfunnel/internal/domain/pricing"
	"rentfunnel/internal/middleware"
	jwtsvc "rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/session"
	"rentfunnel/internal/storage"
)

type app struct {
	router *gin.Engine
	hub    *admin.Hub
}

// newApp wires every service and route on top of the chosen backend
func newApp(cfg *config.Config, provider storage.Provider, sessions session.Store) *app {
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := admin.NewHub(cfg.CORSAllowedOrigins)

	retry := storage.DefaultRetryConfig()
	retry.MaxAttempts = cfg.LeadCreateRetries

	attributionService := attribution.NewService(attribution.NewEngine(cfg.SiteHost, cfg.SessionMaxAge), sessions)
	leadService := lead.NewService(provider.Leads(), hub, retry)
	quoteService := pricing.NewQuoteService(provider.Vehicles(), provider.Quotes(), cfg.QuoteValidity)
	configuratorService := pricing.NewConfiguratorService(sessions, provider.Vehicles())
	authService := auth.NewService(provider.Users(), j)
	favoriteService := favorite.NewService(provider.Favorites(), provider.Vehicles())
	adminService := admin.NewService(leadService, provider.Vehicles(), provider.Quotes(), cfg.Timezone)

	attributionHandler := attribution.NewHandler(attributionService)
	leadHandler := lead.NewHandler(leadService, attributionService)
	quoteHandler := pricing.NewHandler(quoteService)
	configuratorHandler := pricing.NewConfiguratorHandler(configuratorService)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure)
	catalogHandler := catalog.NewHandler(provider.Vehicles())
	favoriteHandler := favorite.NewHandler(favoriteService)
	adminHandler := admin.NewHandler(adminService, hub)

	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		if err := provider.Ready(c.Request.Context()); err != nil {
			response.StorageError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "storage": provider.Name()})
	})

	internal := r.Group("/internal", middleware.InternalTokenAuth(cfg.InternalToken))
	internal.POST("/reset", func(c *gin.Context) {
		if err := provider.Clear(c.Request.Context()); err != nil {
			response.StorageError(c, err)
			return
		}
		zap.L().Warn("storage cleared", zap.String("storage", provider.Name()))
		c.Status(http.StatusNoContent)
	})

	v1 := r.Group("/api/v1")
	{
		// visitor session: attribution + configurator
		visitor := v1.Group("", middleware.Session(cfg.CookieSecure), middleware.OptionalAuth(j))
		attribution.RegisterRoutes(visitor, attributionHandler)
		configuratorHandler.RegisterRoutes(visitor)
		lead.RegisterPublicRoutes(visitor, leadHandler, middleware.RateLimit(cfg.LeadRatePerMinute, cfg.LeadRateBurst))
		quoteHandler.RegisterPublicRoutes(visitor)

		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("", middleware.JWTAuth(j))
		authHandler.RegisterProtectedRoutes(protected)
		quoteHandler.RegisterProtectedRoutes(protected)
		lead.RegisterProtectedRoutes(protected, leadHandler)
		favoriteHandler.RegisterRoutes(protected)

		// back office
		adminHandler.RegisterRoutes(v1.Group("/admin", admin.QueryToken(), middleware.JWTAuth(j), middleware.AdminOnly()))
	}

	return &app{router: r, hub: hub}
}
