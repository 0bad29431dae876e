package controllers

import (
	"net/http"

	deployservice "site-panel/internal/services/deploy_service"
	deploylogservice "site-panel/internal/services/deploylog_service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LogController struct {
	deployLogService *deploylogservice.DeployLogService
	log              *zap.SugaredLogger
}

func NewLogController(logs *deploylogservice.DeployLogService, log *zap.SugaredLogger) *LogController {
	return &LogController{
		deployLogService: logs,
		log:              log,
	}
}

func (l *LogController) RegisterRoutes(group *gin.RouterGroup, guard gin.HandlerFunc) {
	group.GET("/logs/:domain", guard, l.DomainLogs)
}

// DomainLogs answers the deploy history of a domain as plain text, most
// recent entry first.
func (l *LogController) DomainLogs(c *gin.Context) {
	domain := deployservice.NormalizeDomain(c.Param("domain"))

	entries, err := l.deployLogService.ListForDomain(c.Request.Context(), domain)
	if err != nil {
		l.log.Errorw("list deploy logs failed", "domain", domain, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load logs"})
		return
	}

	c.String(http.StatusOK, deploylogservice.FormatLines(entries))
}
