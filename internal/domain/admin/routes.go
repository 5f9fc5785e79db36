package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes expects a group already guarded by JWT auth, the admin
// role check and QueryToken
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// lead pipeline
	admin.GET("/leads", h.ListLeads)
	admin.GET("/leads/export.csv", h.ExportLeads)
	admin.GET("/leads/feed", h.Feed)
	admin.GET("/leads/:id", h.GetLead)
	admin.PATCH("/leads/:id/status", h.UpdateLeadStatus)

	// statistics
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/analytics", h.Analytics)
}
