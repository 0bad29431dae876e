package controllers

import (
	"net/http"

	siteservice "site-panel/internal/services/site_service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SiteController struct {
	siteService *siteservice.SiteService
	log         *zap.SugaredLogger
}

func NewSiteController(sites *siteservice.SiteService, log *zap.SugaredLogger) *SiteController {
	return &SiteController{
		siteService: sites,
		log:         log,
	}
}

func (s *SiteController) RegisterRoutes(group *gin.RouterGroup, guard gin.HandlerFunc) {
	group.GET("/sites", guard, s.ListSites)
}

func (s *SiteController) ListSites(c *gin.Context) {
	sites, err := s.siteService.List(c.Request.Context())
	if err != nil {
		s.log.Errorw("list sites failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sites"})
		return
	}

	c.JSON(http.StatusOK, sites)
}
