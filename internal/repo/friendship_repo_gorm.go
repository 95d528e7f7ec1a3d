package repo

import (
	"context"

	"gorm.io/gorm"

	"arena-social/internal/domain"
)

type FriendshipRepo struct{ db *gorm.DB }

func NewFriendshipRepo(db *gorm.DB) *FriendshipRepo { return &FriendshipRepo{db: db} }

// Create relies on the canonical pair index: a concurrent duplicate in either
// direction surfaces as a conflict.
func (r *FriendshipRepo) Create(ctx context.Context, f *domain.Friendship) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Friend request already exists")
		}
		return domain.Internal("create friendship failed", err)
	}
	return nil
}

func (r *FriendshipRepo) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Requester", unscopedUsers).
		Preload("Recipient", unscopedUsers)
}

func (r *FriendshipRepo) Get(ctx context.Context, id uint) (*domain.Friendship, error) {
	var f domain.Friendship
	if err := r.withParties(ctx).First(&f, id).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NotFound("Friend request not found")
		}
		return nil, domain.Internal("get friendship failed", err)
	}
	f.Hydrate()
	return &f, nil
}

// Between returns the edge joining a and b in either direction, or nil.
func (r *FriendshipRepo) Between(ctx context.Context, a, b uint) (*domain.Friendship, error) {
	lo, hi := domain.CanonicalPair(a, b)
	var f domain.Friendship
	err := r.db.WithContext(ctx).Where("pair_low = ? AND pair_high = ?", lo, hi).First(&f).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal("lookup friendship failed", err)
	}
	return &f, nil
}

// Friends lists the other party of every accepted edge touching userID.
// Anonymized parties are kept, under their scrubbed name.
func (r *FriendshipRepo) Friends(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	users := []domain.User{}
	err := unscopedUsers(r.db.WithContext(ctx)).
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.recipient_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.recipient_id = ?) AND users.id <> ?",
			domain.FriendshipAccepted, userID, userID, userID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, domain.Internal("list friends failed", err)
	}
	return summaries(users), nil
}

func (r *FriendshipRepo) Incoming(ctx context.Context, userID uint) ([]domain.Friendship, error) {
	return r.pending(ctx, "recipient_id = ?", userID)
}

func (r *FriendshipRepo) Outgoing(ctx context.Context, userID uint) ([]domain.Friendship, error) {
	return r.pending(ctx, "requester_id = ?", userID)
}

func (r *FriendshipRepo) pending(ctx context.Context, cond string, userID uint) ([]domain.Friendship, error) {
	fs := []domain.Friendship{}
	err := r.withParties(ctx).
		Where(cond, userID).
		Where("status = ?", domain.FriendshipPending).
		Order("created_at DESC").
		Find(&fs).Error
	if err != nil {
		return nil, domain.Internal("list friend requests failed", err)
	}
	for i := range fs {
		fs[i].Hydrate()
	}
	return fs, nil
}

// UpdateStatus moves the edge from -> to. It reports false when the edge was
// no longer in the expected status.
func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id uint, from, to domain.FriendshipStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Friendship{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, domain.Internal("update friendship failed", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *FriendshipRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Friendship{}, id)
	if res.Error != nil {
		return domain.Internal("delete friendship failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Friend request not found")
	}
	return nil
}
