package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig wires the handlers into one engine
type RouterConfig struct {
	ServiceName string
	Commands    *CommandHandler
	Inventory   *InventoryHandler
}

// NewRouter builds the HTTP surface
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggerMiddleware())
	r.Use(ErrorHandlerMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": cfg.ServiceName,
		})
	})

	api := r.Group("/api/v1")
	cfg.Commands.RegisterRoutes(api)
	cfg.Inventory.RegisterRoutes(api)

	return r
}
