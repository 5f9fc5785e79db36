package catalog

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	vehicles := r.Group("/vehicles")
	{
		vehicles.GET("", h.SearchVehicles)           // GET /api/v1/vehicles?marca=...&sort=...
		vehicles.GET("/featured", h.GetFeatured)     // GET /api/v1/vehicles/featured
		vehicles.GET("/brands", h.GetBrands)         // GET /api/v1/vehicles/brands
		vehicles.GET("/categories", h.GetCategories) // GET /api/v1/vehicles/categories
		vehicles.GET("/slug/:slug", h.GetVehicleBySlug)
		vehicles.GET("/:id", h.GetVehicle)
	}
}
