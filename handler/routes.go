package handler

import (
	PS "github.com/wyciszone/fpgrowth-with-weight/pattern_service"

	"github.com/gin-gonic/gin"
)

// InitRoutes registers the mining API. defaultLimit caps returned rows when a
// request does not set its own limit.
func InitRoutes(r *gin.Engine, ps *PS.PatternService, defaultLimit int) {
	r.GET("/status", StatusHandler)

	v1 := r.Group("/v1")
	v1.POST("/mine", MineHandler(ps, defaultLimit))
	v1.GET("/runs/:id", GetRunHandler(ps))
}
