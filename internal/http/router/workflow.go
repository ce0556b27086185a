package router

import (
	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/handler"
)

func WorkflowRouter(router *gin.RouterGroup, handler *handler.EventHandler) {
	router.GET("/status", handler.WorkflowStatus)
}
