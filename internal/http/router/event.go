package router

import (
	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/handler"
)

func EventRouter(router *gin.RouterGroup, handler *handler.EventHandler) {
	router.GET("", handler.Recent)
}
