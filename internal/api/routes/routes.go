package routes

import (
	"site-panel/internal/api/controllers"
	"site-panel/internal/app"
	"site-panel/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(a.Log), middleware.CORS())

	root := r.Group("/")
	guard := middleware.AuthGuard(a.Tokens)

	// Health Check
	controllers.NewHealthController(a.DB, a.Log).RegisterRoutes(root)

	if !a.Config.Metrics.Disabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	controllers.NewAuthController(a.Users, a.Tokens, a.Log).RegisterRoutes(root)
	controllers.NewUserController(a.Users, a.Log).RegisterRoutes(root, guard)
	controllers.NewDeployController(a.Pipeline, a.Log).RegisterRoutes(root, guard)
	controllers.NewLogController(a.DeployLogs, a.Log).RegisterRoutes(root, guard)
	controllers.NewSiteController(a.Sites, a.Log).RegisterRoutes(root, guard)

	return r
}
