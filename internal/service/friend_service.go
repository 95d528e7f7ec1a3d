package service

import (
	"context"

	"arena-social/internal/domain"
)

type FriendService struct {
	friends domain.FriendshipRepository
	users   *UserService
}

func NewFriendService(friends domain.FriendshipRepository, users *UserService) *FriendService {
	return &FriendService{friends: friends, users: users}
}

// FriendList is the view returned to the acting user: accepted edges collapsed
// to the other party, plus requests waiting on them.
type FriendList struct {
	Friends []domain.UserSummary `json:"friends"`
	Pending []domain.Friendship  `json:"pending"`
}

func (s *FriendService) Request(ctx context.Context, userID uint, target domain.UserLookupKey) (*domain.Friendship, error) {
	me, err := s.users.ResolveID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.users.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if me.ID == other.ID {
		return nil, domain.Validation("You cannot send a friend request to yourself")
	}
	existing, err := s.friends.Between(ctx, me.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("Friend request already exists")
	}

	f := &domain.Friendship{
		RequesterID: me.ID,
		RecipientID: other.ID,
		Status:      domain.FriendshipPending,
	}
	// a concurrent request in either direction trips the pair index and surfaces as 409
	if err := s.friends.Create(ctx, f); err != nil {
		return nil, err
	}
	f.RequesterInfo = me.Summary()
	f.RecipientInfo = other.Summary()
	return f, nil
}

func (s *FriendService) Accept(ctx context.Context, id, userID uint) (*domain.Friendship, error) {
	f, err := s.friends.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.RecipientID != userID {
		return nil, domain.Forbidden("Only the recipient can accept this request")
	}
	if f.Status != domain.FriendshipPending {
		return nil, domain.Validation("Friend request is not pending")
	}
	ok, err := s.friends.UpdateStatus(ctx, id, domain.FriendshipPending, domain.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Validation("Friend request is not pending")
	}
	f.Status = domain.FriendshipAccepted
	return f, nil
}

func (s *FriendService) List(ctx context.Context, userID uint) (*FriendList, error) {
	if _, err := s.users.ResolveID(ctx, userID); err != nil {
		return nil, err
	}
	friends, err := s.friends.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.friends.Incoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FriendList{Friends: friends, Pending: pending}, nil
}

func (s *FriendService) Sent(ctx context.Context, userID uint) ([]domain.Friendship, error) {
	if _, err := s.users.ResolveID(ctx, userID); err != nil {
		return nil, err
	}
	return s.friends.Outgoing(ctx, userID)
}

// Delete removes the edge in any status. Either party may do it; declining a
// request is a delete by the recipient.
func (s *FriendService) Delete(ctx context.Context, id, userID uint) error {
	f, err := s.friends.Get(ctx, id)
	if err != nil {
		return err
	}
	if !f.Involves(userID) {
		return domain.Forbidden("You are not part of this friendship")
	}
	return s.friends.Delete(ctx, id)
}
