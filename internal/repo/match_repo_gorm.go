package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arena-social/internal/domain"
)

type MatchRepo struct{ db *gorm.DB }

func NewMatchRepo(db *gorm.DB) *MatchRepo { return &MatchRepo{db: db} }

type statDelta int

const (
	statWin statDelta = iota
	statLoss
	statDraw
)

func (r *MatchRepo) Record(ctx context.Context, m *domain.Match) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		p1, p2 := statDraw, statDraw
		switch {
		case m.Player1Score > m.Player2Score:
			p1, p2 = statWin, statLoss
		case m.Player1Score < m.Player2Score:
			p1, p2 = statLoss, statWin
		}
		if err := applyStat(tx, m.Player1ID, p1); err != nil {
			return err
		}
		if m.Player2ID != nil {
			return applyStat(tx, *m.Player2ID, p2)
		}
		return nil
	})
	if err != nil {
		return domain.Internal("record match failed", err)
	}
	return r.reload(ctx, m)
}

func applyStat(tx *gorm.DB, userID uint, d statDelta) error {
	if _, err := ensureStat(tx, userID); err != nil {
		return err
	}
	var fields map[string]any
	switch d {
	case statWin:
		fields = map[string]any{"wins": gorm.Expr("wins + 1"), "streak": gorm.Expr("streak + 1")}
	case statLoss:
		fields = map[string]any{"losses": gorm.Expr("losses + 1"), "streak": 0}
	default:
		fields = map[string]any{"streak": 0}
	}
	return tx.Model(&domain.Stat{}).Where("user_id = ?", userID).Updates(fields).Error
}

func (r *MatchRepo) withPlayers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Player1", unscopedUsers).
		Preload("Player2", unscopedUsers)
}

func (r *MatchRepo) reload(ctx context.Context, m *domain.Match) error {
	if err := r.withPlayers(ctx).First(m, m.ID).Error; err != nil {
		return domain.Internal("reload match failed", err)
	}
	m.Hydrate()
	return nil
}

func (r *MatchRepo) List(ctx context.Context) ([]domain.Match, error) {
	return r.find(r.withPlayers(ctx).Order("id ASC"))
}

// ForPlayer lists matches where playerID sits on either side, newest first.
func (r *MatchRepo) ForPlayer(ctx context.Context, playerID uint) ([]domain.Match, error) {
	return r.find(r.withPlayers(ctx).
		Where("player1_id = ? OR player2_id = ?", playerID, playerID).
		Order("played_at DESC").Order("id DESC"))
}

func (r *MatchRepo) find(q *gorm.DB) ([]domain.Match, error) {
	ms := []domain.Match{}
	if err := q.Find(&ms).Error; err != nil {
		return nil, domain.Internal("list matches failed", err)
	}
	for i := range ms {
		ms[i].Hydrate()
	}
	return ms, nil
}
