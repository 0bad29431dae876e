package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	deployservice "site-panel/internal/services/deploy_service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const deploySucceededMessage = "deploy completed successfully"

type DeployController struct {
	pipeline *deployservice.Pipeline
	log      *zap.SugaredLogger
}

func NewDeployController(pipeline *deployservice.Pipeline, log *zap.SugaredLogger) *DeployController {
	return &DeployController{
		pipeline: pipeline,
		log:      log,
	}
}

func (d *DeployController) RegisterRoutes(group *gin.RouterGroup, guard gin.HandlerFunc) {
	group.POST("/deploy", guard, d.Deploy)
}

// Deploy takes a multipart form with the target domain ("domain", or the
// older "dominio") and the site bundle in "zipfile".
func (d *DeployController) Deploy(c *gin.Context) {
	domain := c.PostForm("domain")
	if domain == "" {
		domain = c.PostForm("dominio")
	}
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required"})
		return
	}

	// a missing file is reported by the pipeline as a failed deploy
	var archive io.Reader
	if fh, err := c.FormFile("zipfile"); err == nil {
		f, err := fh.Open()
		if err == nil {
			defer f.Close()
			archive = f
		} else {
			d.log.Warnw("open uploaded archive", "domain", domain, "err", err)
		}
	}

	// the outcome must be recorded even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	if err := d.pipeline.Deploy(ctx, domain, archive); err != nil {
		if errors.Is(err, deployservice.ErrInvalidDomain) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deploy failed"})
		return
	}

	c.String(http.StatusOK, deploySucceededMessage)
}
