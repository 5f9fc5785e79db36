package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/pkg/validator"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// ListLeads godoc
// @Summary List leads
// @Description Leads newest first, filtered and enriched with vehicle details
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query []string false "Pipeline status, repeated or comma separated"
// @Param source query []string false "Acquisition source"
// @Param from query string false "From date (YYYY-MM-DD or RFC3339)"
// @Param to query string false "To date, inclusive"
// @Param search query string false "Matches name, surname, email or company"
// @Success 200 {object} response.Response{data=LeadListResponse}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	filters, ok := h.filters(c)
	if !ok {
		return
	}

	leads, err := h.service.ListLeads(c.Request.Context(), filters)
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, LeadListResponse{Leads: leads, Total: len(leads)})
}

// GetLead godoc
// @Summary Get lead
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Response{data=LeadWithDetails}
// @Failure 404 {object} response.Response
// @Router /admin/leads/{id} [get]
func (h *Handler) GetLead(c *gin.Context) {
	l, err := h.service.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

// UpdateLeadStatus godoc
// @Summary Move a lead along the pipeline
// @Description Any status may follow any status. Entering won stamps converted_at.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body UpdateLeadStatusRequest true "New status"
// @Success 200 {object} response.Response{data=domain.Lead}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/leads/{id}/status [patch]
func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	var req UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	l, err := h.service.UpdateStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"), domain.LeadStatus(req.Status), req.Notes)
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Dashboard godoc
// @Summary Pipeline dashboard
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=DashboardStats}
// @Router /admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Analytics godoc
// @Summary Lead analytics
// @Description Daily leads for the last 30 days, per-source conversion, leads per funnel step
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=Analytics}
// @Router /admin/analytics [get]
func (h *Handler) Analytics(c *gin.Context) {
	data, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}

// ExportLeads godoc
// @Summary Export leads as CSV
// @Description Semicolon separated, UTF-8 with BOM. Accepts the lead list filters.
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {file} file
// @Router /admin/leads/export.csv [get]
func (h *Handler) ExportLeads(c *gin.Context) {
	filters, ok := h.filters(c)
	if !ok {
		return
	}

	data, err := h.service.ExportCSV(c.Request.Context(), filters)
	if err != nil {
		response.StorageError(c, err)
		return
	}
	name := "leads_" + h.service.now().In(h.service.Location()).Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Feed godoc
// @Summary Live lead feed
// @Description Websocket stream of lead_created and lead_status_changed events. Browsers pass the token as ?token=.
// @Tags Admin
// @Security BearerAuth
// @Router /admin/leads/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	adminID := middleware.UserID(c)
	if err := h.hub.ServeWS(c.Writer, c.Request, adminID); err != nil {
		// the upgrader has already answered the client
		zap.L().Warn("feed upgrade failed", zap.String("admin_id", adminID), zap.Error(err))
	}
}

func (h *Handler) filters(c *gin.Context) (domain.LeadFilters, bool) {
	var q LeadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_QUERY", err)
		return domain.LeadFilters{}, false
	}
	f, err := q.Filters(h.service.Location())
	if err != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
		return domain.LeadFilters{}, false
	}
	return f, true
}
