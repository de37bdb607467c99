package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

type stubRepo struct {
	tenants map[int64]*models.Tenant
}

func (r *stubRepo) MigrateIfNeeded(ctx context.Context) error { return nil }

func (r *stubRepo) LoadAll(ctx context.Context) (map[int64]*models.Tenant, error) {
	return r.tenants, nil
}

func (r *stubRepo) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	r.tenants[tenant.ID] = tenant.Clone()
	return nil
}

func (r *stubRepo) DeleteTenant(ctx context.Context, tenantID int64) error {
	delete(r.tenants, tenantID)
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewService(&stubRepo{tenants: make(map[int64]*models.Tenant)}, nil, service.Defaults{
		Timezone:       "UTC",
		ManualDuration: time.Hour,
	})
	require.NoError(t, svc.Load(context.Background()))
	require.NoError(t, svc.EnsureTenant(context.Background(), 1))

	router := gin.New()
	RegisterHealthRoutes(router)
	NewGiveawayHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, svc
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListTenants(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/tenants")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TenantIDs []int64 `json:"tenant_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int64{1}, body.TenantIDs)
}

func TestListAndGetGiveaways(t *testing.T) {
	router, svc := setupRouter(t)
	g, err := svc.Create(context.Background(), 1, models.GiveawayCreate{Title: "Drop", WinnersCount: 1})
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/1/giveaways")
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Giveaways []models.Giveaway `json:"giveaways"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Giveaways, 1)
	assert.Equal(t, g.ID, list.Giveaways[0].ID)

	w = doRequest(router, http.MethodGet, "/api/v1/tenants/1/giveaways/"+g.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Giveaway
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Drop", got.Title)
	assert.Equal(t, models.GiveawayStatusActive, got.Status)
}

func TestGetGiveawayNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/1/giveaways/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownTenantReturns404(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/555/giveaways")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidTenantIDReturns400(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/abc/giveaways")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSettings(t *testing.T) {
	router, svc := setupRouter(t)
	require.NoError(t, svc.SetCooldownPolicy(context.Background(), 1, models.CooldownPolicy{Enabled: true, Days: 2}))

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/1/settings")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TenantID    int64                 `json:"tenant_id"`
		Timezone    string                `json:"timezone"`
		AutoEnabled bool                  `json:"auto_enabled"`
		Cooldown    models.CooldownPolicy `json:"cooldown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TenantID)
	assert.Equal(t, "UTC", body.Timezone)
	assert.True(t, body.AutoEnabled)
	assert.True(t, body.Cooldown.Enabled)
	assert.Equal(t, 2, body.Cooldown.Days)
}
