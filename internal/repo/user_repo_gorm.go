package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arena-social/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("username or email already taken")
		}
		return domain.Internal("create user failed", err)
	}
	return nil
}

func (r *UserRepo) Find(ctx context.Context, key domain.UserLookupKey) (*domain.User, error) {
	q := r.db.WithContext(ctx).Preload("Stats")
	switch key.Kind {
	case domain.ByID:
		q = q.Where("id = ?", key.ID)
	case domain.ByEmail:
		q = q.Where("email = ?", key.Value)
	default:
		q = q.Where("username = ?", key.Value)
	}
	var u domain.User
	if err := q.First(&u).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NotFound("User not found")
		}
		return nil, domain.Internal("find user failed", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.Find(ctx, domain.UserLookupKey{Kind: domain.ByEmail, Value: email})
}

// UsernameTaken also counts anonymized rows: the unique index spans them.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("username = ?", username).Count(&n).Error
	if err != nil {
		return false, domain.Internal("check username failed", err)
	}
	return n > 0, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	return users, nil
}

func (r *UserRepo) ListPage(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if withDeleted {
		tx = tx.Unscoped()
	}
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, domain.Internal("count users failed", err)
	}
	users := []domain.User{}
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, domain.Internal("list users failed", err)
	}
	return users, total, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uint, p domain.ProfilePatch) error {
	fields := map[string]any{}
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.Biography != nil {
		fields["biography"] = *p.Biography
	}
	if p.Password != nil {
		fields["password"] = *p.Password
	}
	if p.TwoFASecret != nil {
		fields["two_fa_secret"] = *p.TwoFASecret
	}
	if p.TwoFAEnabled != nil {
		fields["two_fa_enabled"] = *p.TwoFAEnabled
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updates(ctx, id, fields)
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	return r.updates(ctx, id, map[string]any{"avatar": avatar})
}

func (r *UserRepo) updates(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return domain.Conflict("Username already taken")
		}
		return domain.Internal("update user failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("User not found")
	}
	return nil
}

// Anonymize scrubs every PII column and soft-deletes the row. The row itself
// stays so stats, matches and messages keep their foreign keys. It returns the
// user as it was before the scrub.
func (r *UserRepo) Anonymize(ctx context.Context, id uint) (*domain.User, error) {
	var before domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&before, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
			"username":       fmt.Sprintf("deleted_user_%d", id),
			"email":          nil,
			"password":       nil,
			"google_id":      nil,
			"avatar":         "",
			"biography":      "",
			"two_fa_secret":  nil,
			"two_fa_enabled": false,
			"anonymized":     true,
			"deleted_at":     time.Now(),
		}).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFound("User not found")
		}
		return nil, domain.Internal("anonymize user failed", err)
	}
	return &before, nil
}

// EnsureStat returns the user's stat row, creating an empty one on first need.
func (r *UserRepo) EnsureStat(ctx context.Context, userID uint) (*domain.Stat, error) {
	return ensureStat(r.db.WithContext(ctx), userID)
}

func ensureStat(tx *gorm.DB, userID uint) (*domain.Stat, error) {
	st := domain.Stat{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error; err != nil {
		return nil, domain.Internal("create stat failed", err)
	}
	var out domain.Stat
	if err := tx.First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "load stat")
	}
	return &out, nil
}

func (r *UserRepo) FindSettings(ctx context.Context, userID uint) (*domain.Settings, error) {
	var s domain.Settings
	if err := r.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NotFound("Settings not found")
		}
		return nil, domain.Internal("find settings failed", err)
	}
	return &s, nil
}

func (r *UserRepo) CreateSettings(ctx context.Context, s *domain.Settings) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Settings already exist")
		}
		return domain.Internal("create settings failed", err)
	}
	return nil
}

func (r *UserRepo) SaveSettings(ctx context.Context, s *domain.Settings) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return domain.Internal("save settings failed", err)
	}
	return nil
}
