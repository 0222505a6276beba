package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexpense "github.com/expenseflow/backend/internal/application/expense"
)

// ApprovalRuleHandler exposes CRUD and lifecycle operations for approval rules
type ApprovalRuleHandler struct {
	BaseHandler
	service *appexpense.RuleService
}

// NewApprovalRuleHandler creates a new approval rule handler
func NewApprovalRuleHandler(service *appexpense.RuleService, logger *zap.Logger) *ApprovalRuleHandler {
	return &ApprovalRuleHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /approval-rules
func (h *ApprovalRuleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req appexpense.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateRule(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get handles GET /approval-rules/:id
func (h *ApprovalRuleHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetRule(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /approval-rules with category and active filters
func (h *ApprovalRuleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appexpense.RuleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.service.ListRules(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /approval-rules/:id
func (h *ApprovalRuleHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appexpense.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdateRule(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Activate handles POST /approval-rules/:id/activate
func (h *ApprovalRuleHandler) Activate(c *gin.Context) {
	h.toggle(c, true)
}

// Deactivate handles POST /approval-rules/:id/deactivate
func (h *ApprovalRuleHandler) Deactivate(c *gin.Context) {
	h.toggle(c, false)
}

func (h *ApprovalRuleHandler) toggle(c *gin.Context, active bool) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var resp *appexpense.RuleResponse
	var err error
	if active {
		resp, err = h.service.ActivateRule(c.Request.Context(), tenantID, id)
	} else {
		resp, err = h.service.DeactivateRule(c.Request.Context(), tenantID, id)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete handles DELETE /approval-rules/:id
func (h *ApprovalRuleHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
