package handler

import (
	"net/http"

	"governance/internal/middleware"
	"governance/internal/model"
	"governance/internal/service"
	"governance/pkg/pagination"
	"governance/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService service.AuditService
	auth         *middleware.Auth
	log          *zap.Logger
}

func NewAuditHandler(auditService service.AuditService, auth *middleware.Auth, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, auth: auth, log: log}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(h.auth.RequireRole(model.RoleAdmin, model.RoleManager)) // Protect history logs
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated records with Users pre-loaded
// @Summary      Get audit logs
// @Description  Retrieves the audit trail, optionally for one entity
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        entity_id  query     string  false  "Entity ID"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Paged}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	q, err := pagination.ParseQuery(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p := q.Params

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), q.EntityID, p.Page, p.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{Items: logs, Total: total, Page: p.Page, Limit: p.Limit}))
}
