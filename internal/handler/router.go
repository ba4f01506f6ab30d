package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles every HTTP handler the composition root wires up.
type Handlers struct {
	System     *SystemHandler
	Search     *SearchHandler
	Upload     *UploadHandler
	Documents  *DocumentsHandler
	Download   *DownloadHandler
	Analytics  *AnalyticsHandler
}

// NewRouter builds the gin engine with every route, middleware and the
// swagger UI mounted, grounded on the teacher's route-grouping and
// middleware-ordering conventions.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware())
	r.Use(ErrorHandlerMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/system/info", h.System.GetSystemInfo)
	r.GET("/system/minio/buckets", h.System.ListMinioBuckets)
	r.GET("/system/analytics/export", h.Analytics.Export)

	r.POST("/search", h.Search.Search)

	r.POST("/upload", h.Upload.Upload)
	r.GET("/upload/tasks/:id", h.Upload.UploadTaskStatus)

	r.GET("/documents", h.Documents.List)
	r.DELETE("/documents/:id", h.Documents.Delete)

	r.POST("/download/token", h.Download.MintToken)
	r.POST("/download/file", h.Download.DownloadFile)

	return r
}
