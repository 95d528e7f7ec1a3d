package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"arena-social/internal/domain"
)

type mockUserRepo struct{ mock.Mock }

var _ domain.UserRepository = (*mockUserRepo)(nil)

func userOrNil(v any) *domain.User {
	u, _ := v.(*domain.User)
	return u
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) Find(ctx context.Context, key domain.UserLookupKey) (*domain.User, error) {
	args := m.Called(ctx, key)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *mockUserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]domain.User)
	return us, args.Error(1)
}

func (m *mockUserRepo) ListPage(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]domain.User, int64, error) {
	args := m.Called(ctx, offset, limit, q, withDeleted)
	us, _ := args.Get(0).([]domain.User)
	return us, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uint, p domain.ProfilePatch) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	return m.Called(ctx, id, avatar).Error(0)
}

func (m *mockUserRepo) Anonymize(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *mockUserRepo) EnsureStat(ctx context.Context, userID uint) (*domain.Stat, error) {
	args := m.Called(ctx, userID)
	st, _ := args.Get(0).(*domain.Stat)
	return st, args.Error(1)
}

func (m *mockUserRepo) FindSettings(ctx context.Context, userID uint) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*domain.Settings)
	return s, args.Error(1)
}

func (m *mockUserRepo) CreateSettings(ctx context.Context, s *domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockUserRepo) SaveSettings(ctx context.Context, s *domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}
