package router

import (
	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/handler"
	"github.com/runsight/runsight/internal/http/handler/webhook"
	"github.com/runsight/runsight/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhookHandler := webhook.NewGitHubWebhookHandler(services.Ingest())
	WebhookRouter(router.Group("/webhook"), webhookHandler)

	v1 := router.Group("/api/v1")
	{
		eventHandler := handler.NewEventHandler(services.Query())
		EventRouter(v1.Group("/events"), eventHandler)
		WorkflowRouter(v1.Group("/workflows"), eventHandler)

		changeHandler := handler.NewChangeHandler(services.Query())
		ChangeRouter(v1.Group("/changes"), changeHandler)
	}
}
