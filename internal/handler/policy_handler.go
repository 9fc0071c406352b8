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

type PolicyHandler struct {
	policies service.PolicyService
	auth     *middleware.Auth
	log      *zap.Logger
}

func NewPolicyHandler(policies service.PolicyService, auth *middleware.Auth, log *zap.Logger) *PolicyHandler {
	return &PolicyHandler{policies: policies, auth: auth, log: log}
}

func (h *PolicyHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/policies")
	group.Use(h.auth.Authenticated())
	{
		group.GET("", h.ListPolicies)
		group.GET("/:id", h.GetPolicy)
		group.POST("", h.auth.RequireRole(model.RoleAdmin, model.RoleManager), h.CreatePolicy)
	}
}

// CreatePolicy handles POST /api/policies
// @Summary      Create policy
// @Description  Creates a policy and names the default reviewer of its items
// @Tags         policies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePolicyRequest  true  "Policy"
// @Success      201      {object}  response.Response{data=model.Policy}
// @Failure      400      {object}  response.Response
// @Router       /api/policies [post]
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	var req service.CreatePolicyRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	policy, err := h.policies.CreatePolicy(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, policy))
}

// GetPolicy handles GET /api/policies/:id
// @Summary      Get policy
// @Tags         policies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Policy ID"
// @Success      200  {object}  response.Response{data=model.Policy}
// @Failure      404  {object}  response.Response
// @Router       /api/policies/{id} [get]
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	policy, err := h.policies.GetPolicy(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, policy))
}

// ListPolicies handles GET /api/policies
// @Summary      List policies
// @Tags         policies
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Paged}
// @Router       /api/policies [get]
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	p := pagination.Parse(c)
	policies, total, err := h.policies.ListPolicies(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{Items: policies, Total: total, Page: p.Page, Limit: p.Limit}))
}
