package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arena-social/internal/domain"
)

type MessageRepo struct{ db *gorm.DB }

func NewMessageRepo(db *gorm.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create stores m and reloads it with both parties attached.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return domain.Internal("create message failed", err)
	}
	err := db.Preload("Sender", unscopedUsers).Preload("Receiver", unscopedUsers).First(m, m.ID).Error
	if err != nil {
		return domain.Internal("reload message failed", err)
	}
	m.Hydrate()
	return nil
}

// Conversation returns the messages exchanged between a and b, oldest first.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uint, offset, limit int) ([]domain.Message, error) {
	ms := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, domain.Internal("list messages failed", err)
	}
	return ms, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, domain.Internal("mark read failed", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *MessageRepo) UnreadTotal(ctx context.Context, receiverID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&n).Error
	if err != nil {
		return 0, domain.Internal("count unread failed", err)
	}
	return n, nil
}

func (r *MessageRepo) UnreadBySender(ctx context.Context, receiverID uint) ([]domain.UnreadCount, error) {
	out := []domain.UnreadCount{}
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("sender_id AS from_user_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Group("sender_id").
		Order("sender_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, domain.Internal("count unread by conversation failed", err)
	}
	return out, nil
}

// Involving returns every message sent or received by userID, newest first.
func (r *MessageRepo) Involving(ctx context.Context, userID uint) ([]domain.Message, error) {
	ms := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, domain.Internal("list conversations failed", err)
	}
	return ms, nil
}

type BlockRepo struct{ db *gorm.DB }

func NewBlockRepo(db *gorm.DB) *BlockRepo { return &BlockRepo{db: db} }

// Upsert creates the edge if missing and returns the stored row either way.
func (r *BlockRepo) Upsert(ctx context.Context, blockerID, blockedID uint) (*domain.BlockedUser, error) {
	db := r.db.WithContext(ctx)
	row := domain.BlockedUser{BlockerID: blockerID, BlockedID: blockedID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&row).Error; err != nil {
		return nil, domain.Internal("block user failed", err)
	}
	var out domain.BlockedUser
	if err := db.First(&out, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Error; err != nil {
		return nil, translate(err, "load block")
	}
	return &out, nil
}

func (r *BlockRepo) Delete(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.BlockedUser{})
	if res.Error != nil {
		return false, domain.Internal("unblock user failed", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BlockRepo) ListBlocked(ctx context.Context, blockerID uint) ([]domain.UserSummary, error) {
	users := []domain.User{}
	err := r.db.WithContext(ctx).Unscoped().
		Joins("JOIN blocked_users b ON b.blocked_id = users.id").
		Where("b.blocker_id = ?", blockerID).
		Order("b.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, domain.Internal("list blocked users failed", err)
	}
	return summaries(users), nil
}

func (r *BlockRepo) Blocked(ctx context.Context, a, b uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.BlockedUser{}).
		Where("blocker_id = ? AND blocked_id = ?", a, b).
		Count(&n).Error
	if err != nil {
		return false, domain.Internal("check block failed", err)
	}
	return n > 0, nil
}
