package domain

import (
	"context"
	"time"
)

// MessagePageSize is the fixed block size of conversation paging.
const MessagePageSize = 50

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"index:idx_messages_pair;not null" json:"senderId"`
	ReceiverID uint      `gorm:"index:idx_messages_pair;index:idx_messages_unread,priority:1;not null" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Read       bool      `gorm:"column:is_read;index:idx_messages_unread,priority:2;not null;default:false" json:"read"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"-"`

	SenderInfo   *UserSummary `gorm:"-" json:"sender,omitempty"`
	ReceiverInfo *UserSummary `gorm:"-" json:"receiver,omitempty"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) Hydrate() {
	m.SenderInfo = m.Sender.Summary()
	m.ReceiverInfo = m.Receiver.Summary()
}

type BlockedUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"uniqueIndex:idx_blocked_pair;not null" json:"blockerId"`
	BlockedID uint      `gorm:"uniqueIndex:idx_blocked_pair;not null" json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`

	Blocked *User `gorm:"foreignKey:BlockedID" json:"-"`
}

func (BlockedUser) TableName() string { return "blocked_users" }

type UnreadCount struct {
	FromUserID uint  `json:"fromUserId"`
	Count      int64 `json:"count"`
}

// ConversationPreview is the latest message exchanged with one other party.
type ConversationPreview struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uint      `json:"userId"`
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	Conversation(ctx context.Context, a, b uint, offset, limit int) ([]Message, error)
	MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error)
	UnreadTotal(ctx context.Context, receiverID uint) (int64, error)
	UnreadBySender(ctx context.Context, receiverID uint) ([]UnreadCount, error)
	Involving(ctx context.Context, userID uint) ([]Message, error)
}

type BlockRepository interface {
	Upsert(ctx context.Context, blockerID, blockedID uint) (*BlockedUser, error)
	Delete(ctx context.Context, blockerID, blockedID uint) (bool, error)
	ListBlocked(ctx context.Context, blockerID uint) ([]UserSummary, error)
	// Blocked reports whether a blocks b.
	Blocked(ctx context.Context, a, b uint) (bool, error)
}
