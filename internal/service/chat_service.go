package service

import (
	"context"
	"strings"

	"arena-social/internal/domain"
)

const maxMessageLen = 4000

type ChatService struct {
	messages domain.MessageRepository
	blocks   domain.BlockRepository
	users    *UserService
}

func NewChatService(messages domain.MessageRepository, blocks domain.BlockRepository, users *UserService) *ChatService {
	return &ChatService{messages: messages, blocks: blocks, users: users}
}

type SendInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
}

func (s *ChatService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	if in.SenderID == 0 || in.ReceiverID == 0 || strings.TrimSpace(in.Content) == "" {
		return nil, domain.Validation("senderId, receiverId and content are required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, domain.Validation("content too long")
	}
	if in.SenderID == in.ReceiverID {
		return nil, domain.Validation("You cannot send a message to yourself")
	}
	if _, err := s.users.ResolveID(ctx, in.SenderID); err != nil {
		return nil, err
	}
	if _, err := s.users.ResolveID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}

	blocked, err := s.blocks.Blocked(ctx, in.ReceiverID, in.SenderID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, domain.Forbidden("Receiver blocked sender.")
	}
	blocked, err = s.blocks.Blocked(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, domain.Forbidden("Sender blocked receiver.")
	}

	m := &domain.Message{SenderID: in.SenderID, ReceiverID: in.ReceiverID, Content: in.Content}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation pages the thread between userID and otherID in blocks of
// MessagePageSize. skip and take count pages; take defaults to one page.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID uint, skip, take int) ([]domain.Message, error) {
	if userID == 0 || otherID == 0 {
		return nil, domain.Validation("userId is required")
	}
	if skip < 0 || take < 0 {
		return nil, domain.Validation("skip and take must not be negative")
	}
	if take == 0 {
		take = 1
	}
	return s.messages.Conversation(ctx, userID, otherID, skip*domain.MessagePageSize, take*domain.MessagePageSize)
}

func (s *ChatService) MarkRead(ctx context.Context, senderID, userID uint) (int64, error) {
	if senderID == 0 || userID == 0 {
		return 0, domain.Validation("senderId and userId are required")
	}
	return s.messages.MarkRead(ctx, senderID, userID)
}

func (s *ChatService) UnreadTotal(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, domain.Validation("userId is required")
	}
	return s.messages.UnreadTotal(ctx, userID)
}

func (s *ChatService) UnreadByConversation(ctx context.Context, userID uint) ([]domain.UnreadCount, error) {
	if userID == 0 {
		return nil, domain.Validation("userId is required")
	}
	return s.messages.UnreadBySender(ctx, userID)
}

// Conversations returns the latest message per other party, newest first.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]domain.ConversationPreview, error) {
	if userID == 0 {
		return nil, domain.Validation("userId is required")
	}
	ms, err := s.messages.Involving(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{})
	out := []domain.ConversationPreview{}
	for _, m := range ms {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, domain.ConversationPreview{
			ID:        m.ID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			UserID:    other,
		})
	}
	return out, nil
}

func (s *ChatService) Block(ctx context.Context, blockerID, blockedID uint) (*domain.BlockedUser, error) {
	if blockerID == 0 || blockedID == 0 {
		return nil, domain.Validation("blockerId and blockedId are required")
	}
	if blockerID == blockedID {
		return nil, domain.Validation("You cannot block yourself")
	}
	if _, err := s.users.ResolveID(ctx, blockerID); err != nil {
		return nil, err
	}
	if _, err := s.users.ResolveID(ctx, blockedID); err != nil {
		return nil, err
	}
	return s.blocks.Upsert(ctx, blockerID, blockedID)
}

func (s *ChatService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == 0 || blockedID == 0 {
		return domain.Validation("blockerId and blockedId are required")
	}
	ok, err := s.blocks.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Block not found")
	}
	return nil
}

func (s *ChatService) Blocked(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	if userID == 0 {
		return nil, domain.Validation("userId is required")
	}
	return s.blocks.ListBlocked(ctx, userID)
}
