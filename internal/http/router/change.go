package router

import (
	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/handler"
)

func ChangeRouter(router *gin.RouterGroup, handler *handler.ChangeHandler) {
	router.GET("", handler.Analyze)
}
