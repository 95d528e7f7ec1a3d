package service

import (
	"context"
	"strings"
	"time"

	"arena-social/internal/domain"
)

type MatchService struct {
	matches domain.MatchRepository
	users   *UserService
	now     func() time.Time
}

func NewMatchService(matches domain.MatchRepository, users *UserService) *MatchService {
	return &MatchService{matches: matches, users: users, now: time.Now}
}

// RecordInput uses pointers so that a zero score can be told apart from a missing one.
type RecordInput struct {
	Player1ID    *uint
	Player2ID    *uint
	Player2Name  *string
	Player1Score *int
	Player2Score *int
}

func (s *MatchService) List(ctx context.Context) ([]domain.Match, error) {
	return s.matches.List(ctx)
}

func (s *MatchService) ForPlayer(ctx context.Context, playerID uint) ([]domain.Match, error) {
	if playerID == 0 {
		return nil, domain.Validation("invalid player id")
	}
	return s.matches.ForPlayer(ctx, playerID)
}

// Record stores a finished match. Matches are always recorded as DONE.
func (s *MatchService) Record(ctx context.Context, in RecordInput) (*domain.Match, error) {
	if in.Player1ID == nil || *in.Player1ID == 0 || in.Player1Score == nil || in.Player2Score == nil {
		return nil, domain.Validation("player1Id, player1Score and player2Score are required")
	}
	if *in.Player1Score < 0 || *in.Player2Score < 0 {
		return nil, domain.Validation("scores must not be negative")
	}

	var guest *string
	if in.Player2Name != nil {
		if name := strings.TrimSpace(*in.Player2Name); name != "" {
			guest = &name
		}
	}
	hasID := in.Player2ID != nil
	if hasID == (guest != nil) {
		return nil, domain.Validation("exactly one of player2Id or player2Name is required")
	}
	if hasID && *in.Player2ID == 0 {
		return nil, domain.Validation("invalid player2Id")
	}
	if hasID && *in.Player2ID == *in.Player1ID {
		return nil, domain.Validation("a player cannot play against themselves")
	}

	p1, err := s.users.ResolveID(ctx, *in.Player1ID)
	if err != nil {
		return nil, err
	}
	players := []*domain.User{p1}
	m := &domain.Match{
		Player1ID:    *in.Player1ID,
		Player2Name:  guest,
		Player1Score: *in.Player1Score,
		Player2Score: *in.Player2Score,
		Status:       domain.MatchDone,
		PlayedAt:     s.now().UTC(),
	}
	if hasID {
		p2, err := s.users.ResolveID(ctx, *in.Player2ID)
		if err != nil {
			return nil, err
		}
		players = append(players, p2)
		id := *in.Player2ID
		m.Player2ID = &id
	}
	if err := s.matches.Record(ctx, m); err != nil {
		return nil, err
	}
	// cached profiles embed stats
	s.users.Forget(ctx, players...)
	return m, nil
}
