package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/domain"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/ez"
)

type AdminHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: log}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log)

	// --- user list ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // username/email substring
		WithDeleted bool   `form:"with_deleted"` // include anonymized rows
	}
	type row struct {
		ID         uint              `json:"id"`
		Username   string            `json:"username"`
		Email      *string           `json:"email"`
		Role       string            `json:"role"`
		AuthMethod domain.AuthMethod `json:"authMethod"`
		Anonymized bool              `json:"anonymized"`
		CreatedAt  time.Time         `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			us, total, err := h.users.AdminList(c.Request.Context(), in.Offset, in.Limit, in.Q, in.WithDeleted)
			if err != nil {
				return listOut{}, err
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
					AuthMethod: u.AuthMethod, Anonymized: u.Anonymized, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- anonymize ---
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/anonymize",
		Binder: ez.BindNone,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if _, err := h.users.Anonymize(c.Request.Context(), domain.LookupByID(id)); err != nil {
				return nil, err
			}
			by, _ := ez.UserID(c)
			h.log.Info("user anonymized", zap.Uint("id", id), zap.Uint("by", by))
			return gin.H{"id": id, "anonymized": true}, nil
		},
	})
}
