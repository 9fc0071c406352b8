package handler

import (
	"context"
	"net/http"

	"governance/internal/middleware"
	"governance/internal/model"
	"governance/internal/service"
	"governance/pkg/pagination"
	"governance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApprovalHandler struct {
	approvals service.ApprovalWorkflow
	active    service.ActiveVersionController
	auth      *middleware.Auth
	log       *zap.Logger
}

func NewApprovalHandler(approvals service.ApprovalWorkflow, active service.ActiveVersionController, auth *middleware.Auth, log *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals, active: active, auth: auth, log: log}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	deciders := h.auth.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleReviewer)

	approvals := router.Group("/api/approvals")
	approvals.Use(h.auth.Authenticated())
	{
		approvals.GET("", h.ListApprovalRequests)
		approvals.GET("/history/:identifier", h.History)
		approvals.GET("/:id", h.GetApproval)
		approvals.PUT("/:id/decision", deciders, h.SubmitDecision)
		approvals.PUT("/:id/resubmit", h.Resubmit)
		approvals.PUT("/:id/deactivation/approve", deciders, h.ApproveDeactivation)
		approvals.PUT("/:id/deactivation/reject", deciders, h.RejectDeactivation)
	}
}

// ListApprovalRequests returns the caller's review inbox
// @Summary      List my approval requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        pending  query     bool  false  "Only undecided requests"
// @Param        page     query     int   false  "Page number (default 1)"
// @Param        limit    query     int   false  "Number of items per page (default 20)"
// @Success      200      {object}  response.Response{data=response.Paged}
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovalRequests(c *gin.Context) {
	q, err := pagination.ParseQuery(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p := q.Params
	userID := middleware.UserID(c)

	items, total, err := h.approvals.ListForReviewer(c.Request.Context(), *userID, q.Pending, p.Page, p.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{Items: items, Total: total, Page: p.Page, Limit: p.Limit}))
}

// GetApproval returns one approval request with its snapshot
// @Summary      Get approval request
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Approval ID"
// @Success      200  {object}  response.Response{data=model.ApprovalRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetApproval(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	approval, err := h.approvals.GetApproval(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// History lists every request filed for an identifier
// @Summary      Approval history
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path      string  true  "Compliance identifier"
// @Success      200         {object}  response.Response{data=[]model.ApprovalRequest}
// @Router       /api/approvals/history/{identifier} [get]
func (h *ApprovalHandler) History(c *gin.Context) {
	history, err := h.approvals.History(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// SubmitDecision approves or rejects a pending review request
// @Summary      Decide review request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Approval ID"
// @Param        payload  body      service.DecisionRequest  true  "Decision"
// @Success      200      {object}  response.Response{data=service.DecisionResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/decision [put]
func (h *ApprovalHandler) SubmitDecision(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req service.DecisionRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.approvals.SubmitDecision(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Resubmit sends a rejected version back for review
// @Summary      Resubmit rejected version
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Rejected approval ID"
// @Param        payload  body      service.ResubmitRequest  true  "Corrected content"
// @Success      200      {object}  response.Response{data=service.ResubmitResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/resubmit [put]
func (h *ApprovalHandler) Resubmit(c *gin.Context) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req service.ResubmitRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.approvals.Resubmit(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveDeactivation retires the version named by a deactivation request
// @Summary      Approve deactivation
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                               true   "Deactivation request ID"
// @Param        payload  body      service.DeactivationDecisionRequest  false  "Remarks"
// @Success      200      {object}  response.Response{data=service.DeactivationResult}
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/deactivation/approve [put]
func (h *ApprovalHandler) ApproveDeactivation(c *gin.Context) {
	h.decideDeactivation(c, h.active.ApproveDeactivation)
}

// RejectDeactivation keeps the version active
// @Summary      Reject deactivation
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                               true   "Deactivation request ID"
// @Param        payload  body      service.DeactivationDecisionRequest  false  "Remarks"
// @Success      200      {object}  response.Response{data=service.DeactivationResult}
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/deactivation/reject [put]
func (h *ApprovalHandler) RejectDeactivation(c *gin.Context) {
	h.decideDeactivation(c, h.active.RejectDeactivation)
}

type deactivationDecider func(ctx context.Context, approvalID uuid.UUID, req service.DeactivationDecisionRequest, userID *uuid.UUID) (*service.DeactivationResult, error)

func (h *ApprovalHandler) decideDeactivation(c *gin.Context, decide deactivationDecider) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	// Remarks are optional, so an empty body is fine
	var req service.DeactivationDecisionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.log, &req) {
		return
	}

	result, err := decide(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
