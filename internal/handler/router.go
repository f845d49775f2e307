package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Yatra-App/internal/metrics"
)

const serviceName = "Yatra-App"

// NewRouter はAPIのエンドポイントを登録したGinルーターを作成
func NewRouter(poiHandler *POIHandler, tourHandler *TourHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/radius-settings", poiHandler.GetRadiusSettings)

		// POI API エンドポイント
		pois := api.Group("/pois")
		{
			pois.GET("/nearby", poiHandler.GetNearbyPOIs)
			pois.GET("/:id", poiHandler.GetPOI)
			pois.GET("/:id/narration", poiHandler.GetNarration)
		}

		// Tour API エンドポイント
		tours := api.Group("/tours")
		{
			tours.POST("", tourHandler.PostTour)
			tours.GET("/:id", tourHandler.GetTour)
			tours.DELETE("/:id", tourHandler.DeleteTour)
			tours.POST("/:id/start", tourHandler.PostStart)
			tours.POST("/:id/advance", tourHandler.PostAdvance)
			tours.POST("/:id/pause", tourHandler.PostPause)
			tours.POST("/:id/resume", tourHandler.PostResume)
			tours.POST("/:id/reset", tourHandler.PostReset)
		}
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
