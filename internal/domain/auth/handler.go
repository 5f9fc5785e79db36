package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service      *Service
	cookieSecure bool
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{service: service, cookieSecure: cookieSecure}
}

// Register creates a customer account.
// @Summary		Register
// @Description	Creates a customer account and returns a session token. The token is also set as a cookie.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RegisterRequest	true	"payload"
// @Success		201	{object}		SessionResponseSwagger
// @Failure		409	{object}		ErrorResponseSwagger
// @Failure		422	{object}		ErrorResponseSwagger
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	session, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.CustomError(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.StorageError(c, err)
		return
	}

	h.setCookie(c, session)
	response.Success(c, http.StatusCreated, session)
}

// Login signs a user in.
// @Summary		Login
// @Description	Authenticates by email and password and returns a session token.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	LoginRequest		true	"credentials"
// @Success		200	{object}		SessionResponseSwagger
// @Failure		401	{object}		ErrorResponseSwagger
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		response.StorageError(c, err)
		return
	}

	h.setCookie(c, session)
	response.Success(c, http.StatusOK, session)
}

// Logout clears the session cookie.
// @Summary		Logout
// @Tags		Auth
// @Success		204	"No Content"
// @Router		/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// GetMe returns the current user.
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Success		200	{object}		response.Response{data=domain.User}
// @Failure		401	{object}		ErrorResponseSwagger
// @Router		/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateProfile changes the current user's profile fields.
// @Summary		Update profile
// @Tags		Auth
// @Security	BearerAuth
// @Param		request	body	UpdateProfileRequest	true	"fields to change"
// @Success		200	{object}		response.Response{data=domain.User}
// @Failure		422	{object}		ErrorResponseSwagger
// @Router		/auth/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.StorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) setCookie(c *gin.Context, s *Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, s.AccessToken, s.ExpiresIn, "/", "", h.cookieSecure, true)
}
