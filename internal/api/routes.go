package api

import (
	"io/fs"
	"net/http"

	"codecanvas/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up the API endpoints and the embedded UI.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/state", h.GetState)
		apiGroup.PUT("/prompt", h.UpdatePrompt)
		apiGroup.POST("/generate", h.Generate)
		apiGroup.DELETE("/error", h.DismissError)

		apiGroup.POST("/files", h.CreateFile)
		apiGroup.POST("/files/select", h.SelectFile)
		apiGroup.PUT("/active/content", h.UpdateActiveContent)
		apiGroup.POST("/active/format", h.FormatActive)

		apiGroup.GET("/preview", h.Preview)
		apiGroup.GET("/export", h.Export)
		apiGroup.GET("/events", h.handleEvents)
	}

	static, err := fs.Sub(web.Files, "static")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	router.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(static))
	})
	router.StaticFS("/assets", http.FS(static))
}
