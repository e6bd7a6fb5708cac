package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает gin-движок с маршрутами API
func NewRouter(h *Handler, log *zap.Logger, maxBodySize int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.Use(BodyLimit(maxBodySize))
	{
		api.POST("/segment", h.Segment)
		api.POST("/restore", h.Restore)
		api.POST("/detect-corruption", h.DetectCorruption)
		api.POST("/validate", h.Validate)
		api.POST("/tryon", h.TryOn)
		api.POST("/annotate", h.Annotate)
	}

	return r
}
