package attribution

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
	"rentfunnel/internal/session"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewEngine("rentexcellence.it", time.Hour), session.NewMemoryStore())

	r := gin.New()
	api := r.Group("/api/v1", middleware.Session(false))
	RegisterRoutes(api, NewHandler(svc))
	return r
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHandler_TouchThenStep(t *testing.T) {
	r := setupRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/session/touch",
		`{"query":"utm_source=instagram&utm_campaign=suv","landing_page":"/offerte"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "instagram_ads", env.Data["source"])
	assert.Equal(t, float64(1), env.Data["step_number"])

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/session/step", `{"step":"vehicle_detail"}`, cookies[0])
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vehicle_detail", env.Data["current_step"])
	assert.Equal(t, "instagram_ads", env.Data["source"])
	assert.Equal(t, float64(3), env.Data["step_number"])
	assert.Equal(t, float64(10), env.Data["step_total"])
}

func TestHandler_InvalidStep(t *testing.T) {
	r := setupRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/session/step", `{"step":"nowhere"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_Reset(t *testing.T) {
	r := setupRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Result().Cookies()[0]

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/session", "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
