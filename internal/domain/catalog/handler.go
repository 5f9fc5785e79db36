package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/storage"
)

type Handler struct {
	vehicles storage.VehicleStore
}

func NewHandler(vehicles storage.VehicleStore) *Handler {
	return &Handler{vehicles: vehicles}
}

/* ---------- VEHICLE HANDLERS ---------- */

// SearchVehicles lists the catalog with filters, sorting and pagination
// @Summary Search vehicles
// @Tags Catalog
// @Produce json
// @Param marca query []string false "Brands, repeated or comma separated"
// @Param categoria query []string false "Categories"
// @Param fuel query []string false "Fuel types"
// @Param anticipo_zero query bool false "Only zero down payment offers"
// @Param canone_min query int false "Minimum monthly rate"
// @Param canone_max query int false "Maximum monthly rate"
// @Param disponibile query bool false "Availability"
// @Param search query string false "Matches brand, model and version"
// @Param sort query string false "canone_asc, canone_desc, marca_asc, potenza_desc"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 12"
// @Success 200 {object} response.Response{data=domain.VehicleSearchResult}
// @Router /vehicles [get]
func (h *Handler) SearchVehicles(c *gin.Context) {
	result, err := h.vehicles.Search(c.Request.Context(), searchParams(c))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	if result.Vehicles == nil {
		result.Vehicles = []domain.Vehicle{}
	}
	response.Success(c, http.StatusOK, result)
}

// GetVehicle returns one vehicle by id
// @Summary Get vehicle
// @Tags Catalog
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Response{data=domain.Vehicle}
// @Failure 404 {object} response.Response
// @Router /vehicles/{id} [get]
func (h *Handler) GetVehicle(c *gin.Context) {
	v, err := h.vehicles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// GetVehicleBySlug returns one vehicle by its URL slug
// @Summary Get vehicle by slug
// @Tags Catalog
// @Produce json
// @Param slug path string true "Vehicle slug"
// @Success 200 {object} response.Response{data=domain.Vehicle}
// @Failure 404 {object} response.Response
// @Router /vehicles/slug/{slug} [get]
func (h *Handler) GetVehicleBySlug(c *gin.Context) {
	v, err := h.vehicles.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// GetFeatured lists highlighted vehicles
// @Summary Featured vehicles
// @Tags Catalog
// @Produce json
// @Param limit query int false "Maximum results, default 8"
// @Success 200 {object} response.Response{data=[]domain.Vehicle}
// @Router /vehicles/featured [get]
func (h *Handler) GetFeatured(c *gin.Context) {
	limit := featuredLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxLimit {
		limit = v
	}

	vehicles, err := h.vehicles.GetFeatured(c.Request.Context(), limit)
	if err != nil {
		response.StorageError(c, err)
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	response.Success(c, http.StatusOK, vehicles)
}

// GetBrands lists the distinct brands, sorted
// @Summary Brands
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /vehicles/brands [get]
func (h *Handler) GetBrands(c *gin.Context) {
	brands, err := h.vehicles.Brands(c.Request.Context())
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, brands)
}

// GetCategories lists the categories present in the catalog
// @Summary Categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /vehicles/categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.vehicles.Categories(c.Request.Context())
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}
