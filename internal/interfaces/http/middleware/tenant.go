package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expenseflow/backend/internal/interfaces/http/dto"
)

// Context keys set by the tenant middleware
const (
	// ContextKeyTenantID holds the authenticated tenant UUID
	ContextKeyTenantID = "tenant_id"
	// ContextKeyUserID holds the acting employee UUID, when provided
	ContextKeyUserID = "user_id"
)

// Header names carrying caller identity. An API gateway in front of the
// service is expected to validate credentials and inject these headers.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

// RequireTenant rejects requests without a valid X-Tenant-ID header and
// stores the parsed tenant ID in the request context. X-User-ID is
// optional here; handlers that need the acting employee enforce it.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderTenantID)
		if raw == "" {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Missing X-Tenant-ID header", requestID))
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "X-Tenant-ID must be a valid UUID", requestID))
			return
		}

		c.Set(ContextKeyTenantID, tenantID)

		if rawUser := c.GetHeader(HeaderUserID); rawUser != "" {
			if userID, err := uuid.Parse(rawUser); err == nil {
				c.Set(ContextKeyUserID, userID)
			}
		}

		c.Next()
	}
}

// TenantID returns the tenant ID stored by RequireTenant
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeyTenantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// UserID returns the acting employee ID stored by RequireTenant
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
