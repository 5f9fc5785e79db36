package lead

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers the form endpoints. Extra handlers, such
// as a rate limiter, run before submission.
func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler, guards ...gin.HandlerFunc) {
	leads := r.Group("/leads", guards...)
	{
		leads.POST("", handler.CreateLead)
		leads.POST("/quick", handler.CreateQuickLead)
	}
}

func RegisterProtectedRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/leads/mine", handler.ListMine)
}
