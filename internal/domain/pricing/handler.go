package pricing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/pkg/validator"
)

// Handler handles quote HTTP requests
type Handler struct {
	service *QuoteService
}

func NewHandler(service *QuoteService) *Handler {
	return &Handler{service: service}
}

// Options handles GET /api/v1/quotes/options
// @Summary Configurator options
// @Tags Quotes
// @Produce json
// @Success 200 {object} response.Response{data=OptionsResponse}
// @Router /quotes/options [get]
func (h *Handler) Options(c *gin.Context) {
	response.Success(c, http.StatusOK, OptionsResponse{
		Durations: Durations,
		Services:  Services(),
	})
}

// Calculate handles POST /api/v1/quotes/calculate
// @Summary Price a configuration without saving it
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Configuration"
// @Success 200 {object} response.Response{data=domain.Quote}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /quotes/calculate [post]
func (h *Handler) Calculate(c *gin.Context) {
	req, ok := bindCalculate(c)
	if !ok {
		return
	}
	q, err := h.service.Calculate(c.Request.Context(), req.toInput(middleware.UserIDPtr(c)))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Create handles POST /api/v1/quotes
// @Summary Price and save a configuration
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Configuration"
// @Success 201 {object} response.Response{data=domain.Quote}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /quotes [post]
func (h *Handler) Create(c *gin.Context) {
	req, ok := bindCalculate(c)
	if !ok {
		return
	}
	q, err := h.service.Save(c.Request.Context(), req.toInput(middleware.UserIDPtr(c)))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// Get handles GET /api/v1/quotes/:id
// @Summary Get a saved quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} response.Response{data=domain.Quote}
// @Failure 404 {object} response.Response
// @Router /quotes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// ListMine handles GET /api/v1/quotes/mine
// @Summary Quotes of the current user
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=QuoteListResponse}
// @Router /quotes/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	quotes, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	response.Success(c, http.StatusOK, QuoteListResponse{Quotes: quotes, Total: len(quotes)})
}

// UpdateStatus handles PATCH /api/v1/quotes/:id/status
// @Summary Change the status of an owned quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Param request body UpdateStatusRequest true "Status"
// @Success 200 {object} response.Response{data=domain.Quote}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /quotes/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	q, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Claim handles POST /api/v1/quotes/:id/claim
// @Summary Attach an anonymous quote to the current user
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 200 {object} response.Response{data=domain.Quote}
// @Failure 409 {object} response.Response
// @Router /quotes/{id}/claim [post]
func (h *Handler) Claim(c *gin.Context) {
	q, err := h.service.Claim(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Delete handles DELETE /api/v1/quotes/:id
// @Summary Delete an owned quote
// @Tags Quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Router /quotes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindCalculate(c *gin.Context) (*CalculateRequest, bool) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return nil, false
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return nil, false
	}
	return &req, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrInvalidDownPayment), errors.Is(err, ErrInvalidStatus):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	case errors.Is(err, ErrQuoteNotOwned):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, ErrAlreadyClaimed):
		response.CustomError(c, http.StatusConflict, "ALREADY_CLAIMED", err)
	default:
		failCommon(c, err)
	}
}

func failCommon(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrInvalidDownPayment), errors.Is(err, ErrInvalidConfigStep):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	case errors.Is(err, ErrMissingClient):
		response.CustomError(c, http.StatusBadRequest, "SESSION_MISSING", err)
	default:
		response.StorageError(c, err)
	}
}
