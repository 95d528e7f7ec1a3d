package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/domain"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/ez"
)

type MatchHandler struct {
	matches *service.MatchService
	log     *zap.Logger
}

func NewMatchHandler(matches *service.MatchService, log *zap.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, log: log}
}

func (h *MatchHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Match]{
		Method: http.MethodGet,
		Path:   "/matches",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Match, error) {
			return h.matches.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Match]{
		Method: http.MethodGet,
		Path:   "/matches/:playerId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Match, error) {
			id, err := ez.ParamID(c, "playerId")
			if err != nil {
				return nil, domain.Validation("Invalid playerId provided")
			}
			return h.matches.ForPlayer(c.Request.Context(), id)
		},
	})

	type recordIn struct {
		Player1ID    *uint   `json:"player1Id"`
		Player2ID    *uint   `json:"player2Id"`
		Player2Name  *string `json:"player2Name"`
		Player1Score *int    `json:"player1Score"`
		Player2Score *int    `json:"player2Score"`
	}
	ez.RegisterAction(e, ez.Action[recordIn, *domain.Match]{
		Method: http.MethodPost,
		Path:   "/matches",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *recordIn) (*domain.Match, error) {
			return h.matches.Record(c.Request.Context(), service.RecordInput{
				Player1ID:    in.Player1ID,
				Player2ID:    in.Player2ID,
				Player2Name:  in.Player2Name,
				Player1Score: in.Player1Score,
				Player2Score: in.Player2Score,
			})
		},
	})
}
