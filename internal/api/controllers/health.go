package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthController struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewHealthController(database *gorm.DB, log *zap.SugaredLogger) *HealthController {
	return &HealthController{
		db:  database,
		log: log,
	}
}

func (h *HealthController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Check)
}

func (h *HealthController) Check(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Warnw("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
