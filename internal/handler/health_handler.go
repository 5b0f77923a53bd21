package handler

import (
	"net/http"
	"runtime"

	"surveyhub/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness: database reachability and heap
// usage against the configured ceiling.
type HealthHandler struct {
	db  *gorm.DB
	cfg *config.HealthConfig
}

func NewHealthHandler(db *gorm.DB, cfg *config.HealthConfig) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

func (h *HealthHandler) Check(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		checks["database"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = gin.H{"status": "up"}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	memCheck := gin.H{"status": "ok", "heap_inuse_bytes": mem.HeapInuse}
	if h.cfg.MemoryCeilingBytes > 0 && mem.HeapInuse > h.cfg.MemoryCeilingBytes {
		memCheck["status"] = "degraded"
		healthy = false
	}
	checks["memory"] = memCheck

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
