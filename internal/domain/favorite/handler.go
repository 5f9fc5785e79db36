package favorite

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetFavorites godoc
// @Summary Saved vehicles of the current user
// @Tags Favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=[]FavoriteWithVehicle}
// @Router /favorites [get]
func (h *Handler) GetFavorites(c *gin.Context) {
	favs, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorites": favs, "total": len(favs)})
}

// AddFavorite godoc
// @Summary Save a vehicle
// @Description Idempotent: saving an already saved vehicle returns the existing favorite.
// @Tags Favorites
// @Security BearerAuth
// @Param vehicleId path string true "Vehicle ID"
// @Success 201 {object} response.Response{data=domain.Favorite}
// @Failure 404 {object} response.Response
// @Router /favorites/{vehicleId} [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	fav, err := h.service.Add(c.Request.Context(), middleware.UserID(c), c.Param("vehicleId"))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, fav)
}

// RemoveFavorite godoc
// @Summary Remove a saved vehicle
// @Tags Favorites
// @Security BearerAuth
// @Param vehicleId path string true "Vehicle ID"
// @Success 204 "No Content"
// @Router /favorites/{vehicleId} [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), middleware.UserID(c), c.Param("vehicleId")); err != nil {
		response.StorageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckFavorite godoc
// @Summary Whether a vehicle is saved
// @Tags Favorites
// @Security BearerAuth
// @Param vehicleId path string true "Vehicle ID"
// @Success 200 {object} response.Response
// @Router /favorites/{vehicleId}/check [get]
func (h *Handler) CheckFavorite(c *gin.Context) {
	ok, err := h.service.Exists(c.Request.Context(), middleware.UserID(c), c.Param("vehicleId"))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_favorite": ok})
}

// CountFavorites godoc
// @Summary Number of saved vehicles
// @Tags Favorites
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /favorites/count [get]
func (h *Handler) CountFavorites(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n})
}
