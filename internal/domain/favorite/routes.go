package favorite

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.GET("/count", h.CountFavorites)
		favorites.POST("/:vehicleId", h.AddFavorite)
		favorites.DELETE("/:vehicleId", h.RemoveFavorite)
		favorites.GET("/:vehicleId/check", h.CheckFavorite)
	}
}
