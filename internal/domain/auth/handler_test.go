package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/storage/memory"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	j := jwt.New("test-secret", time.Hour)
	h := NewHandler(NewService(memory.New().Users(), j), false)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterProtectedRoutes(v1.Group("", middleware.JWTAuth(j)))
	return r
}

func send(r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookie {
			return c
		}
	}
	t.Fatal("auth cookie not set")
	return nil
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	r := setupRouter(t)

	w := send(r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"Giulia@Example.it","password":"password123","name":"Giulia","cognome":"Verdi"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, authCookie(t, w).HttpOnly)

	w = send(r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"giulia@example.it","password":"password123","name":"Giulia"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(r, http.MethodPost, "/api/v1/auth/login", `{"email":"giulia@example.it","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/api/v1/auth/login", `{"email":"giulia@example.it","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := authCookie(t, w)

	w = send(r, http.MethodGet, "/api/v1/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "giulia@example.it", me.Data.Email)
	assert.Equal(t, "user", me.Data.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = send(r, http.MethodPut, "/api/v1/auth/me", `{"company":"Verdi Srl","partita_iva":"12345678901"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Verdi Srl")

	w = send(r, http.MethodPut, "/api/v1/auth/me", `{"partita_iva":"123"}`, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_Register_Validation(t *testing.T) {
	r := setupRouter(t)

	w := send(r, http.MethodPost, "/api/v1/auth/register", `{"email":"not-an-email","password":"short","name":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "email", body.Error.Details["email"])
	assert.Equal(t, "min", body.Error.Details["password"])
	assert.Equal(t, "required", body.Error.Details["name"])
}

func TestHandler_Logout(t *testing.T) {
	r := setupRouter(t)

	w := send(r, http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, -1, authCookie(t, w).MaxAge)

	w = send(r, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
