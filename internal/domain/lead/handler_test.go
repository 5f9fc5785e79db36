package lead

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

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/session"
	"rentfunnel/internal/storage/memory"
)

type testEnv struct {
	router *gin.Engine
	attr   *attribution.Service
	jwt    *jwt.Service
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := memory.New()
	attr := attribution.NewService(attribution.NewEngine("rentexcellence.it", time.Hour), session.NewMemoryStore())
	h := NewHandler(NewService(p.Leads(), nil, noBackoff()), attr)
	j := jwt.New("test-secret", time.Hour)

	r := gin.New()
	v1 := r.Group("/api/v1", middleware.Session(false))
	attribution.RegisterRoutes(v1, attribution.NewHandler(attr))
	RegisterPublicRoutes(v1.Group("", middleware.OptionalAuth(j)), h)
	RegisterProtectedRoutes(v1.Group("", middleware.JWTAuth(j)), h)
	return &testEnv{router: r, attr: attr, jwt: j}
}

type leadEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Lead      domain.Lead `json:"lead"`
		Duplicate bool        `json:"duplicate"`
	} `json:"data"`
	Error struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (e *testEnv) post(t *testing.T, path, body string, headers map[string]string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, leadEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env leadEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

const formBody = `{
	"nome": "Mario", "cognome": "Rossi", "email": "mario@example.it",
	"telefono": "333 1234567", "messaggio": "%s", "privacy_accepted": true,
	"vehicle_id": "veh-jeep-compass", "funnel_step": "contact_form"
}`

func body(msg string) string {
	return strings.Replace(formBody, "%s", msg, 1)
}

func TestHandler_CreateLead_CarriesAttribution(t *testing.T) {
	env := setupRouter(t)

	w, _ := env.post(t, "/api/v1/session/touch", `{"query":"utm_source=instagram&utm_campaign=compass"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sid := w.Result().Cookies()[0]

	w, resp := env.post(t, "/api/v1/leads", body("ciao"), nil, sid)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.SourceInstagramAds, resp.Data.Lead.Source)
	assert.Equal(t, "compass", *resp.Data.Lead.UTMCampaign)
	assert.Equal(t, "+393331234567", resp.Data.Lead.Telefono)
	assert.Equal(t, domain.StepContactForm, resp.Data.Lead.FunnelStep)
}

func TestHandler_CreateLead_IdempotencyHeader(t *testing.T) {
	env := setupRouter(t)
	headers := map[string]string{IdempotencyHeader: "form-abc"}

	w, first := env.post(t, "/api/v1/leads", body("first"), headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w, second := env.post(t, "/api/v1/leads", body("second"), headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, second.Data.Duplicate)
	assert.Equal(t, first.Data.Lead.ID, second.Data.Lead.ID)
	assert.Equal(t, "first", second.Data.Lead.Messaggio)
}

func TestHandler_CreateLead_BodyKey(t *testing.T) {
	env := setupRouter(t)
	withKey := strings.Replace(body("x"), `"nome"`, `"idempotency_key": "body-key", "nome"`, 1)

	w, first := env.post(t, "/api/v1/leads", withKey, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "body-key", first.Data.Lead.IdempotencyKey)
}

func TestHandler_CreateLead_Validation(t *testing.T) {
	env := setupRouter(t)

	w, resp := env.post(t, "/api/v1/leads", `{"nome":"Mario","cognome":"Rossi","email":"mario@example.it","telefono":"3331234567"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "privacy_accepted")
}

func TestHandler_QuickLeadAndMine(t *testing.T) {
	env := setupRouter(t)
	token, err := env.jwt.GenerateToken("user-9", "anna@example.it", "user")
	require.NoError(t, err)

	w, resp := env.post(t, "/api/v1/leads/quick",
		`{"nome":"Anna Verdi","telefono":"347 7654321","privacy_accepted":true}`,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-9", *resp.Data.Lead.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data LeadListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Total)
}

func TestHandler_QuickLead_StepFromSession(t *testing.T) {
	env := setupRouter(t)

	w, _ := env.post(t, "/api/v1/session/touch", `{"query":"utm_source=google&utm_medium=cpc"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sid := w.Result().Cookies()[0]

	w, _ = env.post(t, "/api/v1/session/step", `{"step":"configurator_services"}`, nil, sid)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := env.post(t, "/api/v1/leads/quick",
		`{"nome":"Luca Bianchi","telefono":"340 1112223","privacy_accepted":true}`, nil, sid)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.StepConfiguratorServices, resp.Data.Lead.FunnelStep)
	assert.Equal(t, domain.SourceGoogleAds, resp.Data.Lead.Source)

	w, resp = env.post(t, "/api/v1/leads/quick",
		`{"nome":"Luca Bianchi","telefono":"340 1112224","privacy_accepted":true,"funnel_step":"checkout"}`, nil, sid)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.StepCheckout, resp.Data.Lead.FunnelStep)
}
