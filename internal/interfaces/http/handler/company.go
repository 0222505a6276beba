package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/expenseflow/backend/internal/application/identity"
)

// CompanyHandler exposes company registration and lookup. Registration
// bootstraps a tenant, so it is the one endpoint served without the
// tenant middleware.
type CompanyHandler struct {
	BaseHandler
	service *appidentity.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(service *appidentity.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req appidentity.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateCompany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetCurrent handles GET /companies/current, returning the caller's own
// company
func (h *CompanyHandler) GetCurrent(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetCompany(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
