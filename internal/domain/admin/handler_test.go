package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/lead"
	"rentfunnel/internal/middleware"
	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/memory"
)

type handlerEnv struct {
	*fixture
	router *gin.Engine
	hub    *Hub
	jwt    *jwt.Service
}

func setupHandler(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return testNow }
	p := memory.New(memory.WithClock(clock))
	hub := NewHub([]string{"http://localhost:3000"})
	ls := lead.NewService(p.Leads(), hub, storage.RetryConfig{MaxAttempts: 1}).WithClock(clock)
	svc := NewService(ls, p.Vehicles(), p.Quotes(), testZone).WithClock(clock)
	j := jwt.New("test-secret", time.Hour)

	r := gin.New()
	group := r.Group("/api/v1/admin", QueryToken(), middleware.JWTAuth(j), middleware.AdminOnly())
	NewHandler(svc, hub).RegisterRoutes(group)

	t.Cleanup(hub.Close)
	return &handlerEnv{
		fixture: &fixture{svc: svc, provider: p, leads: ls},
		router:  r,
		hub:     hub,
		jwt:     j,
	}
}

func (e *handlerEnv) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken("user-"+role, role+"@example.it", role)
	require.NoError(t, err)
	return tok
}

func (e *handlerEnv) do(t *testing.T, method, path, body, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, role))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHandler_RequiresAdmin(t *testing.T) {
	env := setupHandler(t)

	w := env.do(t, http.MethodGet, "/api/v1/admin/leads", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/leads", "", "user")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/leads", "", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_ListLeads(t *testing.T) {
	env := setupHandler(t)
	env.addLead(t, "l1", testNow.Add(-48*time.Hour), withStatus(domain.LeadContacted))
	env.addLead(t, "l2", testNow, withSource(domain.SourceWhatsApp))
	env.addLead(t, "l3", testNow, withStatus(domain.LeadLost))

	w := env.do(t, http.MethodGet, "/api/v1/admin/leads?status=new,contacted&from=2025-04-13", "", "admin")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data LeadListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Data.Total)
	assert.Equal(t, "l2", body.Data.Leads[0].ID)
	assert.Equal(t, "l1", body.Data.Leads[1].ID)

	w = env.do(t, http.MethodGet, "/api/v1/admin/leads?status=archived", "", "admin")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/leads?from=yesterday", "", "admin")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_GetLead_NotFound(t *testing.T) {
	env := setupHandler(t)

	w := env.do(t, http.MethodGet, "/api/v1/admin/leads/missing", "", "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestHandler_UpdateLeadStatus(t *testing.T) {
	env := setupHandler(t)
	env.addLead(t, "l1", testNow)

	w := env.do(t, http.MethodPatch, "/api/v1/admin/leads/l1/status", `{"status":"qualified","notes":"call back monday"}`, "admin")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data domain.Lead `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.LeadQualified, body.Data.Status)
	assert.Equal(t, "call back monday", body.Data.Notes)

	w = env.do(t, http.MethodPatch, "/api/v1/admin/leads/l1/status", `{"status":"archived"}`, "admin")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/admin/leads/missing/status", `{"status":"won"}`, "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DashboardAndAnalytics(t *testing.T) {
	env := setupHandler(t)
	env.addLead(t, "l1", testNow, withVehicle("veh-fiat-500"))

	w := env.do(t, http.MethodGet, "/api/v1/admin/dashboard", "", "admin")
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Data DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, 1, dash.Data.Leads.Today)
	require.Len(t, dash.Data.MostRequested, 1)
	assert.Equal(t, "Fiat 500", dash.Data.MostRequested[0].VehicleName)

	w = env.do(t, http.MethodGet, "/api/v1/admin/analytics", "", "admin")
	require.Equal(t, http.StatusOK, w.Code)
	var an struct {
		Data Analytics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &an))
	assert.Len(t, an.Data.DailyLeads, 30)
}

func TestHandler_ExportLeads(t *testing.T) {
	env := setupHandler(t)
	env.addLead(t, "l1", testNow)

	w := env.do(t, http.MethodGet, "/api/v1/admin/leads/export.csv", "", "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="leads_2025-04-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeffID;Data;"))
}

func dialFeed(t *testing.T, env *handlerEnv, token string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/leads/feed"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHandler_Feed(t *testing.T) {
	env := setupHandler(t)

	conn, _, err := dialFeed(t, env, env.token(t, "admin"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Connections() == 1 }, time.Second, 10*time.Millisecond)

	form := lead.Form{
		Nome: "Mario", Cognome: "Rossi", Email: "mario@example.it",
		Telefono: "3331234567", PrivacyAccepted: true,
	}
	res, err := env.leads.CreateLead(context.Background(), form, "", lead.Context{}, nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event FeedEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventLeadCreated, event.Type)
	assert.Equal(t, res.Lead.ID, event.Lead.ID)
	assert.Nil(t, event.From)

	_, err = env.leads.UpdateStatus(context.Background(), res.Lead.ID, domain.LeadContacted, "")
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventLeadStatusChanged, event.Type)
	assert.Equal(t, domain.LeadContacted, event.Lead.Status)
	require.NotNil(t, event.From)
	assert.Equal(t, domain.LeadNew, *event.From)
}

func TestHandler_Feed_Rejected(t *testing.T) {
	env := setupHandler(t)

	_, resp, err := dialFeed(t, env, "", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialFeed(t, env, env.token(t, "user"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = dialFeed(t, env, env.token(t, "admin"), http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestQueryToken_IgnoresPlainRequests(t *testing.T) {
	env := setupHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/leads?token="+env.token(t, "admin"), nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
