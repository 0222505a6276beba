package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenseflow/backend/internal/infrastructure/persistence"
	"github.com/expenseflow/backend/internal/interfaces/http/dto"
)

// SystemHandler exposes service metadata and health endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	version   string
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		version:     version,
		startedAt:   time.Now(),
	}
}

// SystemInfo describes the running service
type SystemInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfo{
		Name:    "expenseflow",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// HealthStatus reports service and dependency health
type HealthStatus struct {
	Status   string                 `json:"status"`
	Database map[string]interface{} `json:"database"`
}

// Health handles GET /health. It reports 503 when the database is
// unreachable so load balancers stop routing to this instance.
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := map[string]interface{}{"status": "up"}
	healthy := true

	if err := h.db.Ping(); err != nil {
		healthy = false
		dbStatus["status"] = "down"
		h.logger.Warn("health check database ping failed", zap.Error(err))
	} else if stats, err := h.db.Stats(); err == nil {
		dbStatus["open_connections"] = stats.OpenConnections
		dbStatus["in_use"] = stats.InUse
		dbStatus["idle"] = stats.Idle
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, dto.NewSuccessResponse(HealthStatus{
		Status:   status,
		Database: dbStatus,
	}))
}
