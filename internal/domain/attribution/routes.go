package attribution

import "github.com/gin-gonic/gin"

// RegisterRoutes registers visitor session routes. r must carry the
// session cookie middleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	s := r.Group("/session")
	{
		s.GET("", handler.Get)
		s.DELETE("", handler.Reset)
		s.POST("/touch", handler.Touch)
		s.POST("/step", handler.SetStep)
	}
}
