package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/domain"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/ez"
)

type ChatHandler struct {
	chat *service.ChatService
	log  *zap.Logger
}

func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

type blockIn struct {
	BlockerID uint `json:"blockerId"`
	BlockedID uint `json:"blockedId"`
}

func (h *ChatHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type sendIn struct {
		SenderID   uint   `json:"senderId"`
		ReceiverID uint   `json:"receiverId"`
		Content    string `json:"content"`
	}
	ez.RegisterAction(e, ez.Action[sendIn, *domain.Message]{
		Method: http.MethodPost,
		Path:   "/messages",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *sendIn) (*domain.Message, error) {
			return h.chat.Send(c.Request.Context(), service.SendInput{
				SenderID:   in.SenderID,
				ReceiverID: in.ReceiverID,
				Content:    in.Content,
			})
		},
	})

	type readIn struct {
		SenderID uint `json:"senderId"`
		UserID   uint `json:"userId"`
	}
	type readOut struct {
		Success bool  `json:"success"`
		Updated int64 `json:"updated"`
	}
	ez.RegisterAction(e, ez.Action[readIn, readOut]{
		Method: http.MethodPatch,
		Path:   "/messages/read",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *readIn) (readOut, error) {
			n, err := h.chat.MarkRead(c.Request.Context(), in.SenderID, in.UserID)
			if err != nil {
				return readOut{}, err
			}
			return readOut{Success: true, Updated: n}, nil
		},
	})

	type countOut struct {
		Count int64 `json:"count"`
	}
	ez.RegisterAction(e, ez.Action[userQuery, countOut]{
		Method: http.MethodGet,
		Path:   "/messages/unread/total",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) (countOut, error) {
			uid, err := in.id()
			if err != nil {
				return countOut{}, err
			}
			n, err := h.chat.UnreadTotal(c.Request.Context(), uid)
			if err != nil {
				return countOut{}, err
			}
			return countOut{Count: n}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, []domain.UnreadCount]{
		Method: http.MethodGet,
		Path:   "/messages/unread/by-conversation",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) ([]domain.UnreadCount, error) {
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			return h.chat.UnreadByConversation(c.Request.Context(), uid)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Message]{
		Method: http.MethodGet,
		Path:   "/messages/:userId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Message, error) {
			other, err := ez.ParamID(c, "userId")
			if err != nil {
				return nil, domain.Validation("Invalid userId(s)")
			}
			me, err := ez.QueryID(c, "userId")
			if err != nil {
				return nil, domain.Validation("Invalid userId(s)")
			}
			skip, err := ez.QueryInt(c, "skip", 0)
			if err != nil {
				return nil, err
			}
			take, err := ez.QueryInt(c, "take", 1)
			if err != nil {
				return nil, err
			}
			return h.chat.Conversation(c.Request.Context(), me, other, skip, take)
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, []domain.ConversationPreview]{
		Method: http.MethodGet,
		Path:   "/conversations",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) ([]domain.ConversationPreview, error) {
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			return h.chat.Conversations(c.Request.Context(), uid)
		},
	})

	h.mountBlock(e)
}

func (h *ChatHandler) mountBlock(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[blockIn, *domain.BlockedUser]{
		Method: http.MethodPost,
		Path:   "/block",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *blockIn) (*domain.BlockedUser, error) {
			return h.chat.Block(c.Request.Context(), in.BlockerID, in.BlockedID)
		},
	})

	ez.RegisterAction(e, ez.Action[blockIn, gin.H]{
		Method: http.MethodDelete,
		Path:   "/block",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *blockIn) (gin.H, error) {
			if err := h.chat.Unblock(c.Request.Context(), in.BlockerID, in.BlockedID); err != nil {
				return nil, err
			}
			return gin.H{"message": "User unblocked successfully."}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[userQuery, []domain.UserSummary]{
		Method: http.MethodGet,
		Path:   "/block",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userQuery) ([]domain.UserSummary, error) {
			uid, err := in.id()
			if err != nil {
				return nil, err
			}
			return h.chat.Blocked(c.Request.Context(), uid)
		},
	})
}
