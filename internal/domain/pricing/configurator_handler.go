package pricing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/pkg/validator"
)

// ConfiguratorHandler exposes the visitor's configurator progress
type ConfiguratorHandler struct {
	service *ConfiguratorService
}

func NewConfiguratorHandler(service *ConfiguratorService) *ConfiguratorHandler {
	return &ConfiguratorHandler{service: service}
}

// Get handles GET /api/v1/session/configurator
// @Summary Configurator progress of the visitor
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=ConfiguratorState}
// @Router /session/configurator [get]
func (h *ConfiguratorHandler) Get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		failCommon(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// Update handles PUT /api/v1/session/configurator
// @Summary Save configurator progress
// @Tags Session
// @Accept json
// @Produce json
// @Param request body ConfiguratorRequest true "Changed fields"
// @Success 200 {object} response.Response{data=ConfiguratorState}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /session/configurator [put]
func (h *ConfiguratorHandler) Update(c *gin.Context) {
	var req ConfiguratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	st, err := h.service.Update(c.Request.Context(), middleware.ClientID(c), req.update())
	if err != nil {
		failCommon(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// Clear handles DELETE /api/v1/session/configurator
func (h *ConfiguratorHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.ClientID(c)); err != nil {
		failCommon(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
