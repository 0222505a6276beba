package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexpense "github.com/expenseflow/backend/internal/application/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/interfaces/http/dto"
)

// ApprovalHandler exposes the approver-facing queue and decision endpoints
type ApprovalHandler struct {
	BaseHandler
	service *appexpense.ApprovalService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(service *appexpense.ApprovalService, logger *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListPending handles GET /approvals/pending, the calling approver's queue
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	approverID, ok := h.userID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	page, err := h.service.ListPending(c.Request.Context(), tenantID, approverID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Decide handles POST /approvals/:id/decision
func (h *ApprovalHandler) Decide(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	approverID, ok := h.userID(c)
	if !ok {
		return
	}
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appexpense.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), tenantID, approverID, requestID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByExpense handles GET /expenses/:id/approvals, the full approval
// trail for one expense
func (h *ApprovalHandler) ListByExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListByExpense(c.Request.Context(), tenantID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}
