package router

import (
	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/handler/webhook"
)

func WebhookRouter(router *gin.RouterGroup, handler *webhook.GitHubWebhookHandler) {
	router.POST("/github", handler.HandleEvent)
}
