package router

import (
	"github.com/gin-gonic/gin"
)

// NewAPIEngine serves the public routes at the root path.
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d, "arena_api")
	if d.Modules != nil {
		d.Modules.MountAllAPI(&r.RouterGroup)
	}
	return r
}
