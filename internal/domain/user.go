package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type AuthMethod string

const (
	AuthLocal  AuthMethod = "LOCAL"
	AuthGoogle AuthMethod = "GOOGLE"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        *string        `gorm:"uniqueIndex;size:191" json:"email"`
	Password     *string        `gorm:"size:100" json:"-"`
	GoogleID     *string        `gorm:"uniqueIndex;size:191" json:"-"`
	AuthMethod   AuthMethod     `gorm:"size:16;not null;default:LOCAL" json:"authMethod"`
	Role         string         `gorm:"size:16;not null;default:user" json:"role"`
	Avatar       string         `gorm:"size:512" json:"avatar"`
	Biography    string         `gorm:"size:1024" json:"biography"`
	TwoFASecret  *string        `gorm:"column:two_fa_secret;size:128" json:"-"`
	TwoFAEnabled bool           `gorm:"column:two_fa_enabled;not null;default:false" json:"twoFAEnabled"`
	Anonymized   bool           `gorm:"not null;default:false" json:"anonymized"`
	Stats        *Stat          `gorm:"foreignKey:UserID" json:"stats,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Summary is the identity projection attached to friendships, messages and matches.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username}
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Stat holds the per-user game counters. At most one row per user.
type Stat struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Wins      int       `gorm:"not null;default:0" json:"wins"`
	Losses    int       `gorm:"not null;default:0" json:"losses"`
	Streak    int       `gorm:"not null;default:0" json:"streak"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Stat) TableName() string { return "stats" }

type Settings struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Language             string    `gorm:"size:8;not null;default:en" json:"language"`
	Theme                string    `gorm:"size:16;not null;default:dark" json:"theme"`
	SoundEnabled         bool      `gorm:"not null" json:"soundEnabled"`
	NotificationsEnabled bool      `gorm:"not null" json:"notificationsEnabled"`
	PaddleColor          string    `gorm:"size:16" json:"paddleColor"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (Settings) TableName() string { return "settings" }

// SettingsPatch carries only the fields present in the request.
type SettingsPatch struct {
	Language             *string `json:"language"`
	Theme                *string `json:"theme"`
	SoundEnabled         *bool   `json:"soundEnabled"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	PaddleColor          *string `json:"paddleColor"`
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s *Settings) {
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.PaddleColor != nil {
		s.PaddleColor = *p.PaddleColor
	}
}

// ProfilePatch carries only the profile fields present in the request.
// Password is expected already hashed when it reaches the repository.
type ProfilePatch struct {
	Username     *string
	Biography    *string
	Password     *string
	TwoFASecret  *string
	TwoFAEnabled *bool
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, key UserLookupKey) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]User, error)
	ListPage(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]User, int64, error)
	UpdateProfile(ctx context.Context, id uint, p ProfilePatch) error
	UpdateAvatar(ctx context.Context, id uint, avatar string) error
	Anonymize(ctx context.Context, id uint) (*User, error)

	EnsureStat(ctx context.Context, userID uint) (*Stat, error)

	FindSettings(ctx context.Context, userID uint) (*Settings, error)
	CreateSettings(ctx context.Context, s *Settings) error
	SaveSettings(ctx context.Context, s *Settings) error
}
