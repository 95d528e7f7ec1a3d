package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
)

// Friendship is a directed edge requester -> recipient. PairLow/PairHigh hold the
// canonical unordered pair and carry the unique index, so only one edge can exist
// between two users whatever the direction.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"index;not null" json:"requesterId"`
	RecipientID uint             `gorm:"index;not null" json:"recipientId"`
	PairLow     uint             `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"-"`
	PairHigh    uint             `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"-"`
	Status      FriendshipStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"-"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"-"`

	RequesterInfo *UserSummary `gorm:"-" json:"requester,omitempty"`
	RecipientInfo *UserSummary `gorm:"-" json:"recipient,omitempty"`
}

func (Friendship) TableName() string { return "friendships" }

func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.PairLow, f.PairHigh = CanonicalPair(f.RequesterID, f.RecipientID)
	return nil
}

// Hydrate copies preloaded associations into their summary projections.
func (f *Friendship) Hydrate() {
	f.RequesterInfo = f.Requester.Summary()
	f.RecipientInfo = f.Recipient.Summary()
}

// Other returns the party of the edge that is not userID.
func (f *Friendship) Other(userID uint) uint {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

type FriendshipRepository interface {
	Create(ctx context.Context, f *Friendship) error
	Get(ctx context.Context, id uint) (*Friendship, error)
	Between(ctx context.Context, a, b uint) (*Friendship, error)
	Friends(ctx context.Context, userID uint) ([]UserSummary, error)
	Incoming(ctx context.Context, userID uint) ([]Friendship, error)
	Outgoing(ctx context.Context, userID uint) ([]Friendship, error)
	UpdateStatus(ctx context.Context, id uint, from, to FriendshipStatus) (bool, error)
	Delete(ctx context.Context, id uint) error
}
