package lead

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
)

// IdempotencyHeader carries the client deduplication key
const IdempotencyHeader = "Idempotency-Key"

// AttributionSource yields the attribution of the submitting visitor
type AttributionSource interface {
	Snapshot(ctx context.Context, clientID string) (*attribution.Snapshot, error)
}

// Handler handles lead HTTP requests
type Handler struct {
	service     *Service
	attribution AttributionSource
}

// NewHandler creates lead handler
func NewHandler(service *Service, attribution AttributionSource) *Handler {
	return &Handler{
		service:     service,
		attribution: attribution,
	}
}

// CreateLead handles POST /api/v1/leads
// @Summary Submit the contact form
// @Description Public endpoint. Resubmitting with the same Idempotency-Key returns the original lead.
// @Tags Leads
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param request body CreateLeadRequest true "Contact form"
// @Success 201 {object} response.Response{data=CreateLeadResponse}
// @Success 200 {object} response.Response{data=CreateLeadResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /leads [post]
func (h *Handler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	res, err := h.service.CreateLead(ctx, req.form(), idempotencyKey(c, req.IdempotencyKey),
		h.context(c, req.FunnelStep, req.VehicleID, req.QuoteID), h.snapshot(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, res)
}

// CreateQuickLead handles POST /api/v1/leads/quick
// @Summary Request a callback with name and phone only
// @Tags Leads
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param request body QuickLeadRequest true "Callback request"
// @Success 201 {object} response.Response{data=CreateLeadResponse}
// @Failure 422 {object} response.Response
// @Router /leads/quick [post]
func (h *Handler) CreateQuickLead(c *gin.Context) {
	var req QuickLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	form := QuickForm{Nome: req.Nome, Telefono: req.Telefono, PrivacyAccepted: req.PrivacyAccepted}
	res, err := h.service.CreateQuickLead(c.Request.Context(), form, idempotencyKey(c, req.IdempotencyKey),
		h.context(c, req.FunnelStep, req.VehicleID, req.QuoteID), h.snapshot(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, res)
}

// ListMine handles GET /api/v1/leads/mine
// @Summary Leads submitted by the current user
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=LeadListResponse}
// @Router /leads/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	leads, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	response.Success(c, http.StatusOK, LeadListResponse{Leads: leads, Total: len(leads)})
}

func (h *Handler) created(c *gin.Context, res *Result) {
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	response.Success(c, status, CreateLeadResponse{Lead: res.Lead, Duplicate: res.Duplicate})
}

func (h *Handler) context(c *gin.Context, step string, vehicleID, quoteID *string) Context {
	return Context{
		FunnelStep: domain.FunnelStep(strings.TrimSpace(step)),
		VehicleID:  nonEmpty(vehicleID),
		QuoteID:    nonEmpty(quoteID),
		UserID:     middleware.UserIDPtr(c),
	}
}

// snapshot never fails the submission: without attribution the lead is direct
func (h *Handler) snapshot(c *gin.Context) *attribution.Snapshot {
	if h.attribution == nil {
		return nil
	}
	clientID := middleware.ClientID(c)
	if clientID == "" {
		return nil
	}
	snap, err := h.attribution.Snapshot(c.Request.Context(), clientID)
	if err != nil {
		zap.L().Warn("lead attribution unavailable", zap.String("client_id", clientID), zap.Error(err))
		return nil
	}
	return snap
}

func (h *Handler) fail(c *gin.Context, err error) {
	var ferr *FieldError
	switch {
	case errors.As(err, &ferr):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", map[string]string{ferr.Field: ferr.Message})
	case errors.Is(err, ErrInvalidStatus):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	default:
		response.StorageError(c, err)
	}
}

func idempotencyKey(c *gin.Context, body string) string {
	if h := strings.TrimSpace(c.GetHeader(IdempotencyHeader)); h != "" {
		return h
	}
	return strings.TrimSpace(body)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
