package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexpense "github.com/expenseflow/backend/internal/application/expense"
)

// ExpenseHandler exposes expense submission and queries
type ExpenseHandler struct {
	BaseHandler
	service *appexpense.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(service *appexpense.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Submit handles POST /expenses. The submitting employee comes from the
// X-User-ID header.
func (h *ExpenseHandler) Submit(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	employeeID, ok := h.userID(c)
	if !ok {
		return
	}

	var req appexpense.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.SubmitExpense(c.Request.Context(), tenantID, employeeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get handles GET /expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetExpense(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /expenses with optional category, status and date
// range filters
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appexpense.ExpenseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.service.ListExpenses(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListMine handles GET /expenses/mine, returning the calling employee's
// own expenses
func (h *ExpenseHandler) ListMine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	employeeID, ok := h.userID(c)
	if !ok {
		return
	}

	var filter appexpense.ExpenseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.service.ListEmployeeExpenses(c.Request.Context(), tenantID, employeeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
