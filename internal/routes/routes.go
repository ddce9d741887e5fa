package routes

import (
	"net/http"

	"dartview/internal/config"
	"dartview/internal/controllers"
	"dartview/internal/logging"
	"dartview/internal/source"
	"dartview/internal/tasks"
	"dartview/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the services the routes are wired to. Enqueuer and Renderer.Cache
// may be nil.
type Deps struct {
	Source   source.Source
	Renderer *tasks.Renderer
	Enqueuer controllers.Enqueuer
	Logger   *zap.Logger
}

// SetupRouter initializes the controllers and the viewer routes
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer := deps.Renderer
	if renderer == nil {
		renderer = &tasks.Renderer{Source: deps.Source, TTL: cfg.RenderCacheTTL, Logger: logger}
	}

	viewerController := controllers.ViewerController{
		Source:   deps.Source,
		Renderer: renderer,
		Enqueuer: deps.Enqueuer,
		Config:   cfg,
		Logger:   logger,
	}

	router := gin.New()
	router.Use(logging.RequestID(), logging.GinLogger(logger), gin.Recovery())
	router.SetHTMLTemplate(web.MustTemplates())
	router.StaticFS("/static", http.FS(web.Static()))

	router.GET("/health", viewerController.Health)
	router.GET("/", viewerController.Index)

	companies := router.Group("/companies")
	{
		companies.GET("/suggest", viewerController.CompanySuggestions)
		companies.GET("/:corp_code/reports", viewerController.ReportsFragment)
		companies.GET("/:corp_code/reports/:raw_report_id", viewerController.ReportDetails)
		companies.GET("/:corp_code/reports/:raw_report_id/raw", viewerController.RawReport)
	}

	api := router.Group("/api")
	{
		api.GET("/companies", viewerController.SearchCompanies)
	}

	return router
}
