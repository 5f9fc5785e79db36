package pricing

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers quote routes open to visitors. r should
// carry OptionalAuth so logged-in users own what they save.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	quotes := r.Group("/quotes")
	{
		quotes.GET("/options", h.Options)
		quotes.POST("/calculate", h.Calculate)
		quotes.POST("", h.Create)
		quotes.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	quotes := protected.Group("/quotes")
	{
		quotes.GET("/mine", h.ListMine)
		quotes.PATCH("/:id/status", h.UpdateStatus)
		quotes.POST("/:id/claim", h.Claim)
		quotes.DELETE("/:id", h.Delete)
	}
}

// RegisterRoutes registers the configurator state routes. r must carry the
// session cookie middleware.
func (h *ConfiguratorHandler) RegisterRoutes(r *gin.RouterGroup) {
	cfg := r.Group("/session/configurator")
	{
		cfg.GET("", h.Get)
		cfg.PUT("", h.Update)
		cfg.DELETE("", h.Clear)
	}
}
