package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/domain"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/ez"
)

// identifier accepts a JSON string or number naming a user.
type identifier string

func (i *identifier) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = identifier(n.String())
	return nil
}

type FriendHandler struct {
	friends *service.FriendService
	log     *zap.Logger
}

func NewFriendHandler(friends *service.FriendService, log *zap.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, log: log}
}

type userQuery struct {
	UserID uint `form:"userId"`
}

func (q userQuery) id() (uint, error) {
	if q.UserID == 0 {
		return 0, domain.Validation("Missing or invalid userId")
	}
	return q.UserID, nil
}

func (h *FriendHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type requestIn struct {
		UserID uint       `json:"userId"`
		Target identifier `json:"target"`
	}
	ez.RegisterAction(e, ez.Action[requestIn, *domain.Friendship]{
		Method: http.MethodPost,
		Path:   "/friends",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *requestIn) (*domain.Friendship, error) {
			if in.UserID == 0 {
				return nil, domain.Validation("userId and target are required")
			}
			key, err := domain.ParseLookupKey(string(in.Target))
			if err != nil {
				return nil, err
			}
			return h.friends.Request(c.Request.Context(), in.UserID, key)
		},
	})

	type acceptIn struct {
		UserID uint `json:"userId"`
	}
	ez.RegisterAction(e, ez.Action[acceptIn, *domain.Friendship]{
		Method: http.MethodPatch,
		Path:   "/friends/:id/accept",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *acceptIn) (*domain.Friendship, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if in.UserID == 0 {
				return nil, domain.Validation("userId is required")
			}
			return h.friends.Accept(c.Request.Context(), id, in.UserID)
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, *service.FriendList]{
		Method: http.MethodGet,
		Path:   "/friends",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) (*service.FriendList, error) {
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			return h.friends.List(c.Request.Context(), uid)
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, []domain.Friendship]{
		Method: http.MethodGet,
		Path:   "/friends/sent",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) ([]domain.Friendship, error) {
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			return h.friends.Sent(c.Request.Context(), uid)
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, gin.H]{
		Method: http.MethodDelete,
		Path:   "/friends/:id",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			if err := h.friends.Delete(c.Request.Context(), id, uid); err != nil {
				return nil, err
			}
			return gin.H{"id": id, "deleted": true}, nil
		},
	})
}
