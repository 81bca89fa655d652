package router

import (
	"time"

	"github.com/beacon-dev/beacon/internal/handlers"
	"github.com/beacon-dev/beacon/internal/middleware"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// Public status surface
		api.GET("/status/:slug", handlers.GetPublicStatus)
		api.GET("/ws/:slug", handlers.WebSocket)

		// Called by the monitoring service
		internal := api.Group("/internal", middleware.InternalAuthMiddleware())
		{
			internal.POST("/incidents/auto", handlers.AutoIncident)
		}

		pages := api.Group("/pages", middleware.AuthMiddleware())
		{
			pages.POST("", handlers.CreatePage)
			pages.GET("", handlers.ListPages)
			pages.GET("/:page_id", handlers.GetPage)
			pages.PATCH("/:page_id", handlers.UpdatePage)
			pages.DELETE("/:page_id", handlers.DeletePage)

			// Component bindings
			pages.POST("/:page_id/components", handlers.CreateBinding)
			pages.GET("/:page_id/components", handlers.ListBindings)
			pages.PUT("/:page_id/components/:binding_id", handlers.UpdateBinding)
			pages.DELETE("/:page_id/components/:binding_id", handlers.DeleteBinding)

			// Manual incident management
			pages.POST("/:page_id/incidents", handlers.CreateIncident)
			pages.GET("/:page_id/incidents", handlers.ListIncidents)
			pages.POST("/:page_id/incidents/:incident_id/updates", handlers.AppendIncidentUpdate)
		}
	}

	return r
}
