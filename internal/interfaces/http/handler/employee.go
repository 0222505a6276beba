package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/expenseflow/backend/internal/application/identity"
	"github.com/expenseflow/backend/internal/domain/identity"
)

// EmployeeHandler exposes employee directory management
type EmployeeHandler struct {
	BaseHandler
	service *appidentity.EmployeeService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(service *appidentity.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// employeeListQuery binds the employee list query string
type employeeListQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create handles POST /employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req appidentity.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateEmployee(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get handles GET /employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetEmployee(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /employees
func (h *EmployeeHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q employeeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := identity.EmployeeFilter{IsActive: q.IsActive}
	filter.Search = q.Search
	filter.Page = q.Page
	filter.PageSize = q.PageSize
	if q.Role != "" {
		role := identity.EmployeeRole(q.Role)
		filter.Role = &role
	}

	page, err := h.service.ListEmployees(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appidentity.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdateEmployee(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate handles DELETE /employees/:id. Employees are never hard
// deleted so their expense history survives.
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateEmployee(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
