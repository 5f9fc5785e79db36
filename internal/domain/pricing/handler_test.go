package pricing

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

func setupRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := memory.New()
	h := NewHandler(NewQuoteService(p.Vehicles(), p.Quotes(), 0))
	j := jwt.New("test-secret", time.Hour)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1.Group("", middleware.OptionalAuth(j)))
	h.RegisterProtectedRoutes(v1.Group("", middleware.JWTAuth(j)))
	return r, j
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func request(t *testing.T, r *gin.Engine, method, path, body, token string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

const golfBody = `{"vehicle_id":"veh-vw-golf","durata":36,"anticipo":20,"km_anno":15000,"manutenzione":true,"assicurazione":true}`

func TestHandler_Calculate(t *testing.T) {
	r, _ := setupRouter(t)

	code, resp := request(t, r, http.MethodPost, "/api/v1/quotes/calculate", golfBody, "")
	require.Equal(t, http.StatusOK, code)

	var q struct {
		Pricing struct {
			Totale int64 `json:"totale"`
		} `json:"pricing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &q))
	assert.Equal(t, int64(412), q.Pricing.Totale)
}

func TestHandler_Calculate_Invalid(t *testing.T) {
	r, _ := setupRouter(t)

	code, resp := request(t, r, http.MethodPost, "/api/v1/quotes/calculate",
		`{"vehicle_id":"veh-vw-golf","durata":36,"anticipo":120,"km_anno":15000}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = request(t, r, http.MethodPost, "/api/v1/quotes/calculate", `{bad`, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = request(t, r, http.MethodPost, "/api/v1/quotes/calculate",
		`{"vehicle_id":"nope","durata":36,"km_anno":15000}`, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestHandler_Calculate_UnlistedMileageFallsBack(t *testing.T) {
	r, _ := setupRouter(t)

	total := func(body string) int64 {
		code, resp := request(t, r, http.MethodPost, "/api/v1/quotes/calculate", body, "")
		require.Equal(t, http.StatusOK, code)
		var q struct {
			Pricing struct {
				Totale int64 `json:"totale"`
			} `json:"pricing"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &q))
		return q.Pricing.Totale
	}

	base := total(`{"vehicle_id":"veh-vw-golf","durata":36,"km_anno":10000}`)
	assert.Equal(t, base, total(`{"vehicle_id":"veh-vw-golf","durata":36}`))
	assert.Equal(t, base, total(`{"vehicle_id":"veh-vw-golf","durata":36,"km_anno":0}`))
	assert.Equal(t, base, total(`{"vehicle_id":"veh-vw-golf","durata":36,"km_anno":12345}`))
}

func TestHandler_SaveListAndDelete(t *testing.T) {
	r, j := setupRouter(t)
	token, err := j.GenerateToken("user-1", "mario@example.it", "user")
	require.NoError(t, err)

	code, resp := request(t, r, http.MethodPost, "/api/v1/quotes", golfBody, token)
	require.Equal(t, http.StatusCreated, code)
	var saved struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &saved))
	assert.Equal(t, "user-1", saved.UserID)

	code, resp = request(t, r, http.MethodGet, "/api/v1/quotes/mine", "", token)
	require.Equal(t, http.StatusOK, code)
	var list QuoteListResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 1, list.Total)

	code, _ = request(t, r, http.MethodPatch, "/api/v1/quotes/"+saved.ID+"/status", `{"status":"accepted"}`, token)
	assert.Equal(t, http.StatusOK, code)

	code, _ = request(t, r, http.MethodDelete, "/api/v1/quotes/"+saved.ID, "", token)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = request(t, r, http.MethodGet, "/api/v1/quotes/"+saved.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_ProtectedRequiresToken(t *testing.T) {
	r, _ := setupRouter(t)
	code, _ := request(t, r, http.MethodGet, "/api/v1/quotes/mine", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHandler_Options(t *testing.T) {
	r, _ := setupRouter(t)
	code, resp := request(t, r, http.MethodGet, "/api/v1/quotes/options", "", "")
	require.Equal(t, http.StatusOK, code)

	var opts OptionsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &opts))
	assert.Equal(t, []int{12, 24, 36, 48}, opts.Durations)
	assert.Len(t, opts.Services, 4)
}
