package attribution

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/pkg/validator"
)

// Handler handles visitor session HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Touch handles POST /api/v1/session/touch
// @Summary Record a page load
// @Tags Session
// @Accept json
// @Produce json
// @Param request body TouchRequest false "Landing data"
// @Success 200 {object} response.Response{data=SessionResponse}
// @Router /session/touch [post]
func (h *Handler) Touch(c *gin.Context) {
	var req TouchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			return
		}
	}
	if req.Query == "" {
		req.Query = c.Request.URL.RawQuery
	}
	if req.Referrer == "" {
		req.Referrer = c.GetHeader("Referer")
	}

	a, err := h.service.Touch(c.Request.Context(), middleware.ClientID(c), Visit{
		RawQuery:    req.Query,
		Referrer:    req.Referrer,
		LandingPage: req.LandingPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(a))
}

// SetStep handles POST /api/v1/session/step
// @Summary Move the visitor to a funnel step
// @Tags Session
// @Accept json
// @Produce json
// @Param request body StepRequest true "Step"
// @Success 200 {object} response.Response{data=SessionResponse}
// @Failure 422 {object} response.Response
// @Router /session/step [post]
func (h *Handler) SetStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	a, err := h.service.SetStep(c.Request.Context(), middleware.ClientID(c), req.Step)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(a))
}

// Get handles GET /api/v1/session
// @Summary Current visitor session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=SessionResponse}
// @Router /session [get]
func (h *Handler) Get(c *gin.Context) {
	a, err := h.service.Current(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(a))
}

// Reset handles DELETE /api/v1/session
func (h *Handler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), middleware.ClientID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidStep):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	case errors.Is(err, ErrMissingClient):
		response.CustomError(c, http.StatusBadRequest, "SESSION_MISSING", err)
	default:
		response.StorageError(c, err)
	}
}
