package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/core/auth"
	"arena-social/internal/domain"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/ez"
)

type UserHandler struct {
	users *service.UserService
	jwt   *auth.JWTer
	log   *zap.Logger
}

func NewUserHandler(users *service.UserService, jwt *auth.JWTer, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, jwt: jwt, log: log}
}

type idOut struct {
	ID uint `json:"id"`
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.users.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:identifier",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.Profile(c.Request.Context(), key)
		},
	})

	type createIn struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	ez.RegisterAction(e, ez.Action[createIn, idOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (idOut, error) {
			u, err := h.users.CreateLocal(c.Request.Context(), service.CreateLocalInput{
				Username: in.Username,
				Password: in.Password,
				Email:    in.Email,
			})
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: u.ID}, nil
		},
	})

	type googleIn struct {
		GoogleID string `json:"googleId"`
		Email    string `json:"email"`
	}
	ez.RegisterAction(e, ez.Action[googleIn, idOut]{
		Method: http.MethodPost,
		Path:   "/users/google",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *googleIn) (idOut, error) {
			u, created, err := h.users.FindOrCreateGoogle(c.Request.Context(), in.GoogleID, in.Email)
			if err != nil {
				return idOut{}, err
			}
			if created {
				h.log.Info("google user created", zap.Uint("id", u.ID), zap.String("username", u.Username))
			}
			return idOut{ID: u.ID}, nil
		},
	})

	type patchIn struct {
		Username     *string `json:"username"`
		Biography    *string `json:"biography"`
		Password     *string `json:"password"`
		TwoFASecret  *string `json:"twoFASecret"`
		TwoFAEnabled *bool   `json:"twoFAEnabled"`
	}
	ez.RegisterAction(e, ez.Action[patchIn, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/:identifier",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *patchIn) (*domain.User, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.UpdateProfile(c.Request.Context(), key, service.ProfileInput{
				Username:     in.Username,
				Biography:    in.Biography,
				Password:     in.Password,
				TwoFASecret:  in.TwoFASecret,
				TwoFAEnabled: in.TwoFAEnabled,
			})
		},
	})

	type avatarIn struct {
		Avatar string `json:"avatar"`
	}
	ez.RegisterAction(e, ez.Action[avatarIn, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/:identifier/avatar",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *avatarIn) (*domain.User, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.UpdateAvatar(c.Request.Context(), key, in.Avatar)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:identifier",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			id, err := h.users.Anonymize(c.Request.Context(), key)
			if err != nil {
				return nil, err
			}
			return gin.H{"id": id, "anonymized": true}, nil
		},
	})

	h.mountSettings(e)
	h.mountAuth(e)
}

func (h *UserHandler) mountSettings(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Settings]{
		Method: http.MethodGet,
		Path:   "/users/:identifier/settings",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Settings, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.Settings(c.Request.Context(), key)
		},
	})

	ez.RegisterAction(e, ez.Action[domain.SettingsPatch, *domain.Settings]{
		Method: http.MethodPost,
		Path:   "/users/:identifier/settings",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.SettingsPatch) (*domain.Settings, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.CreateSettings(c.Request.Context(), key, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[domain.SettingsPatch, *domain.Settings]{
		Method: http.MethodPatch,
		Path:   "/users/:identifier/settings",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.SettingsPatch) (*domain.Settings, error) {
			key, err := ez.ParamKey(c, "identifier")
			if err != nil {
				return nil, err
			}
			return h.users.UpdateSettings(c.Request.Context(), key, *in)
		},
	})
}

func (h *UserHandler) mountAuth(e ez.EZ) {
	type loginIn struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	type loginOut struct {
		Token string              `json:"token"`
		User  *domain.UserSummary `json:"user"`
		Role  string              `json:"role"`
	}
	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := h.users.Login(c.Request.Context(), in.Identifier, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			tok, err := h.jwt.Issue(u.ID, u.Role)
			if err != nil {
				return loginOut{}, domain.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: u.Summary(), Role: u.Role}, nil
		},
	})
}
