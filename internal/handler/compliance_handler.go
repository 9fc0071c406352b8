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

type ComplianceHandler struct {
	compliances service.ComplianceService
	active      service.ActiveVersionController
	auth        *middleware.Auth
	log         *zap.Logger
}

func NewComplianceHandler(compliances service.ComplianceService, active service.ActiveVersionController, auth *middleware.Auth, log *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{compliances: compliances, active: active, auth: auth, log: log}
}

func (h *ComplianceHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/compliances")
	group.Use(h.auth.Authenticated())
	{
		group.POST("", h.CreateCompliance)
		group.GET("", h.ListCompliances)
		group.GET("/:id", h.GetCompliance)
		group.GET("/:id/versions", h.ListVersions)
		group.PUT("/:id", h.EditCompliance)
		group.POST("/:id/clone", h.CloneCompliance)
		group.POST("/:id/toggle-active", h.auth.RequireRole(model.RoleAdmin, model.RoleManager), h.ToggleActiveVersion)
		group.POST("/:id/deactivation-requests", h.RequestDeactivation)
	}
}

// CreateCompliance handles POST /api/compliances
// @Summary      Create compliance item
// @Description  Creates version 1.0 of a new item and opens its first review request
// @Tags         compliances
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateComplianceRequest  true  "Compliance item"
// @Success      201      {object}  response.Response{data=service.CreateComplianceResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/compliances [post]
func (h *ComplianceHandler) CreateCompliance(c *gin.Context) {
	var req service.CreateComplianceRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.compliances.CreateCompliance(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListCompliances handles GET /api/compliances
// @Summary      List compliance items
// @Tags         compliances
// @Produce      json
// @Security     BearerAuth
// @Param        policy_id        query     string  false  "Policy ID"
// @Param        identifier       query     string  false  "Identifier"
// @Param        status           query     string  false  "Under Review, Approved or Rejected"
// @Param        active_inactive  query     string  false  "Active or Inactive"
// @Param        page             query     int     false  "Page number (default 1)"
// @Param        limit            query     int     false  "Number of items per page (default 20)"
// @Success      200              {object}  response.Response{data=response.Paged}
// @Failure      400              {object}  response.Response
// @Router       /api/compliances [get]
func (h *ComplianceHandler) ListCompliances(c *gin.Context) {
	q, err := pagination.ParseQuery(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p := q.Params
	filter := service.ComplianceFilter{
		PolicyID:       q.PolicyUUID(),
		Identifier:     q.Identifier,
		Status:         model.ComplianceStatus(q.Status),
		ActiveInactive: model.ActiveState(q.ActiveInactive),
		Page:           p.Page,
		Limit:          p.Limit,
	}

	items, total, err := h.compliances.ListCompliances(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{Items: items, Total: total, Page: p.Page, Limit: p.Limit}))
}

// GetCompliance handles GET /api/compliances/:id
// @Summary      Get compliance version
// @Tags         compliances
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Compliance ID"
// @Success      200  {object}  response.Response{data=model.Compliance}
// @Failure      404  {object}  response.Response
// @Router       /api/compliances/{id} [get]
func (h *ComplianceHandler) GetCompliance(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	record, err := h.compliances.GetCompliance(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// ListVersions handles GET /api/compliances/:id/versions
// @Summary      Version chain
// @Description  Every version sharing the item's identifier, newest first
// @Tags         compliances
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Compliance ID"
// @Success      200  {object}  response.Response{data=[]model.Compliance}
// @Failure      404  {object}  response.Response
// @Router       /api/compliances/{id}/versions [get]
func (h *ComplianceHandler) ListVersions(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	chain, err := h.compliances.ListVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, chain))
}

// EditCompliance handles PUT /api/compliances/:id
// @Summary      Edit compliance item
// @Description  Writes a new Major or Minor version and sends it for review
// @Tags         compliances
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Compliance ID"
// @Param        payload  body      service.EditComplianceRequest  true  "New content"
// @Success      201      {object}  response.Response{data=service.EditComplianceResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/compliances/{id} [put]
func (h *ComplianceHandler) EditCompliance(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req service.EditComplianceRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.compliances.EditCompliance(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// CloneCompliance handles POST /api/compliances/:id/clone
// @Summary      Clone compliance item
// @Description  Copies a version into another policy under a new identifier
// @Tags         compliances
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Source compliance ID"
// @Param        payload  body      service.CloneComplianceRequest  true  "Target policy and overrides"
// @Success      201      {object}  response.Response{data=service.CloneComplianceResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/compliances/{id}/clone [post]
func (h *ComplianceHandler) CloneCompliance(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req service.CloneComplianceRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.compliances.CloneCompliance(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ToggleActiveVersion handles POST /api/compliances/:id/toggle-active
// @Summary      Toggle active version
// @Tags         compliances
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Compliance ID"
// @Success      200  {object}  response.Response{data=service.ToggleResult}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/compliances/{id}/toggle-active [post]
func (h *ComplianceHandler) ToggleActiveVersion(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	result, err := h.active.ToggleActiveVersion(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RequestDeactivation handles POST /api/compliances/:id/deactivation-requests
// @Summary      Request deactivation
// @Tags         compliances
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Compliance ID"
// @Param        payload  body      service.DeactivationRequest  true  "Reason"
// @Success      201      {object}  response.Response{data=model.ApprovalRequest}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/compliances/{id}/deactivation-requests [post]
func (h *ComplianceHandler) RequestDeactivation(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req service.DeactivationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	approval, err := h.active.RequestDeactivation(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, approval))
}
