package router

import (
	"github.com/gin-gonic/gin"

	"arena-social/internal/domain"
	mdw "arena-social/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1, every route behind an admin token.
func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d, "arena_admin")

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, domain.RoleAdmin))
	if d.Modules != nil {
		d.Modules.MountAllAdmin(admin)
	}
	return r
}
