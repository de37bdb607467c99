// Package http exposes a read-only operations API over the lifecycle
// engine: health probes and tenant/giveaway inspection. All mutating
// operations go through the chat-platform adapter, not this surface.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service *service.Service
}

func NewGiveawayHandler(svc *service.Service) *GiveawayHandler {
	return &GiveawayHandler{service: svc}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	tenants := router.Group("/tenants")
	{
		tenants.GET("", h.listTenants)
		tenants.GET("/:id/giveaways", h.listGiveaways)
		tenants.GET("/:id/giveaways/:gid", h.getGiveaway)
		tenants.GET("/:id/settings", h.getSettings)
	}
}

func (h *GiveawayHandler) listTenants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tenant_ids": h.service.TenantIDs()})
}

func (h *GiveawayHandler) listGiveaways(c *gin.Context) {
	tenantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant id"})
		return
	}

	giveaways, err := h.service.ListGiveaways(tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": giveaways})
}

func (h *GiveawayHandler) getGiveaway(c *gin.Context) {
	tenantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant id"})
		return
	}

	giveaway, err := h.service.GetGiveaway(tenantID, c.Param("gid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

func (h *GiveawayHandler) getSettings(c *gin.Context) {
	tenantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant id"})
		return
	}

	tenant, err := h.service.TenantSnapshot(tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tenant_id":    tenant.ID,
		"timezone":     tenant.Timezone,
		"auto_enabled": tenant.AutoEnabled,
		"cooldown":     tenant.Cooldown,
		"admin_roles":  tenant.AdminRoles,
		"templates":    tenant.Templates,
	})
}

// RegisterHealthRoutes installs liveness and readiness probes.
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "giveaway-bot-backend",
		})
	})
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		status := http.StatusInternalServerError
		switch {
		case appErr.IsNotFound():
			status = http.StatusNotFound
		case appErr.IsValidation():
			status = http.StatusBadRequest
		case appErr.IsInvalidState():
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"code": appErr.Code, "error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
