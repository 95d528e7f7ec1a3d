package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"arena-social/internal/core/cache"
	"arena-social/internal/domain"
	"arena-social/internal/repo"
	"arena-social/internal/testutil"
	"arena-social/pkg/utils"
)

func strp(s string) *string { return &s }

func TestCreateLocal_HashesPassword(t *testing.T) {
	m := &mockUserRepo{}
	s := NewUserService(m, nil, 0)
	ctx := context.Background()

	var stored *domain.User
	m.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(nil).Once()

	u, err := s.CreateLocal(ctx, CreateLocalInput{Username: " alice ", Password: "secret", Email: "alice@x.com"})
	require.NoError(t, err)
	m.AssertExpectations(t)

	assert.Same(t, stored, u)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, domain.AuthLocal, u.AuthMethod)
	assert.Equal(t, domain.RoleUser, u.Role)
	require.NotNil(t, u.Password)
	assert.NotEqual(t, "secret", *u.Password)
	assert.True(t, utils.CheckPassword("secret", *u.Password))
}

func TestCreateLocal_Validation(t *testing.T) {
	m := &mockUserRepo{}
	s := NewUserService(m, nil, 0)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateLocalInput
	}{
		{"missing password", CreateLocalInput{Username: "a", Email: "a@x.com"}},
		{"missing email", CreateLocalInput{Username: "a", Password: "p"}},
		{"bad email", CreateLocalInput{Username: "a", Password: "p", Email: "nope"}},
		{"numeric username", CreateLocalInput{Username: "123", Password: "p", Email: "a@x.com"}},
		{"username with at", CreateLocalInput{Username: "a@b", Password: "p", Email: "a@x.com"}},
		{"reserved prefix", CreateLocalInput{Username: "deleted_user_9", Password: "p", Email: "a@x.com"}},
		{"too long username", CreateLocalInput{Username: strings.Repeat("a", 65), Password: "p", Email: "a@x.com"}},
		{"too long password", CreateLocalInput{Username: "a", Password: strings.Repeat("p", 80), Email: "a@x.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateLocal(ctx, tc.in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
	m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFindOrCreateGoogle_SuffixesTakenUsernames(t *testing.T) {
	m := &mockUserRepo{}
	s := NewUserService(m, nil, 0)
	ctx := context.Background()

	m.On("FindByEmail", ctx, "bob.smith@gmail.com").Return(nil, domain.NotFound("User not found")).Once()
	m.On("UsernameTaken", ctx, "bob.smith").Return(true, nil).Once()
	m.On("UsernameTaken", ctx, "bob.smith1").Return(true, nil).Once()
	m.On("UsernameTaken", ctx, "bob.smith2").Return(false, nil).Once()
	m.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "bob.smith2" && u.AuthMethod == domain.AuthGoogle && u.Password == nil
	})).Return(nil).Once()

	u, created, err := s.FindOrCreateGoogle(ctx, "g-1", "bob.smith@gmail.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bob.smith2", u.Username)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "g-1", *u.GoogleID)
	m.AssertExpectations(t)
}

func TestFindOrCreateGoogle_ExistingEmail(t *testing.T) {
	m := &mockUserRepo{}
	s := NewUserService(m, nil, 0)
	ctx := context.Background()
	known := &domain.User{ID: 7, Username: "bob"}

	m.On("FindByEmail", ctx, "bob@x.com").Return(known, nil).Once()

	u, created, err := s.FindOrCreateGoogle(ctx, "g-1", "bob@x.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, known, u)
	m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUsernameBase(t *testing.T) {
	assert.Equal(t, "bob.smith", usernameBase("bob.smith@x.com"))
	assert.Equal(t, "bobsmith", usernameBase("bob+smith@x.com"))
	assert.Equal(t, "user12345", usernameBase("12345@x.com"))
	assert.Equal(t, "user", usernameBase("+++@x.com"))
}

func newUsers(t *testing.T, c *cache.Cache) (*UserService, *repo.UserRepo) {
	t.Helper()
	db := testutil.NewDB(t)
	r := repo.NewUserRepo(db)
	return NewUserService(r, c, time.Minute), r
}

func TestLogin(t *testing.T) {
	s, _ := newUsers(t, nil)
	ctx := context.Background()
	u, err := s.CreateLocal(ctx, CreateLocalInput{Username: "alice", Password: "pw", Email: "alice@x.com"})
	require.NoError(t, err)

	for _, id := range []string{"alice", "alice@x.com", "1"} {
		got, err := s.Login(ctx, id, "pw")
		require.NoError(t, err, id)
		assert.Equal(t, u.ID, got.ID)
	}

	_, err = s.Login(ctx, "alice", "wrong")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	_, err = s.Login(ctx, "ghost", "pw")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	g, _, err := s.FindOrCreateGoogle(ctx, "g", "g@x.com")
	require.NoError(t, err)
	_, err = s.Login(ctx, g.Username, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = s.Login(ctx, g.Username, "anything")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newUsers(t, nil)
	ctx := context.Background()
	a, err := s.CreateLocal(ctx, CreateLocalInput{Username: "alice", Password: "pw", Email: "alice@x.com"})
	require.NoError(t, err)
	_, err = s.CreateLocal(ctx, CreateLocalInput{Username: "bob", Password: "pw", Email: "bob@x.com"})
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, domain.LookupByID(a.ID), ProfileInput{Username: strp("bob")})
	assert.True(t, domain.IsConflict(err))

	// renaming to the current name is a no-op rather than a conflict
	_, err = s.UpdateProfile(ctx, domain.LookupByID(a.ID), ProfileInput{Username: strp("alice")})
	require.NoError(t, err)

	got, err := s.UpdateProfile(ctx, domain.LookupByID(a.ID), ProfileInput{
		Username:  strp("alicia"),
		Biography: strp("hi"),
		Password:  strp("new-pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "hi", got.Biography)

	_, err = s.Login(ctx, "alicia", "new-pw")
	require.NoError(t, err)
	_, err = s.Login(ctx, "alicia", "pw")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestProfile_CachedAndInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	s, _ := newUsers(t, c)
	ctx := context.Background()

	a, err := s.CreateLocal(ctx, CreateLocalInput{Username: "alice", Password: "pw", Email: "alice@x.com"})
	require.NoError(t, err)

	p, err := s.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "alice"})
	require.NoError(t, err)
	require.NotNil(t, p.Stats)
	assert.True(t, mr.Exists("arena:user:username:alice"))

	_, err = s.UpdateAvatar(ctx, domain.LookupByID(a.ID), "a.png")
	require.NoError(t, err)
	assert.False(t, mr.Exists("arena:user:username:alice"))

	p, err = s.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "a.png", p.Avatar)

	_, err = s.Anonymize(ctx, domain.LookupByID(a.ID))
	require.NoError(t, err)
	_, err = s.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "alice"})
	assert.True(t, domain.IsNotFound(err))
}

func TestProfile_RefreshedAfterMatch(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	db := testutil.NewDB(t)
	users := NewUserService(repo.NewUserRepo(db), c, time.Minute)
	matches := NewMatchService(repo.NewMatchRepo(db), users)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	for _, name := range []string{"alice", "bob"} {
		p, err := users.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: name})
		require.NoError(t, err)
		assert.Zero(t, p.Stats.Wins)
		assert.Zero(t, p.Stats.Losses)
	}
	_, err := users.Profile(ctx, domain.LookupByID(a.ID))
	require.NoError(t, err)
	require.True(t, mr.Exists("arena:user:username:alice"))

	_, err = matches.Record(ctx, RecordInput{
		Player1ID: uintp(a.ID), Player2ID: uintp(b.ID),
		Player1Score: intp(5), Player2Score: intp(1),
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("arena:user:username:alice"))
	assert.False(t, mr.Exists("arena:user:"+domain.LookupByID(a.ID).String()))
	assert.False(t, mr.Exists("arena:user:username:bob"))

	p, err := users.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats.Wins)
	assert.Equal(t, 1, p.Stats.Streak)

	p, err = users.Profile(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats.Losses)
}

func TestSettings(t *testing.T) {
	s, _ := newUsers(t, nil)
	ctx := context.Background()
	a, err := s.CreateLocal(ctx, CreateLocalInput{Username: "alice", Password: "pw", Email: "alice@x.com"})
	require.NoError(t, err)
	key := domain.LookupByID(a.ID)

	_, err = s.Settings(ctx, key)
	assert.True(t, domain.IsNotFound(err))

	st, err := s.CreateSettings(ctx, key, domain.SettingsPatch{Theme: strp("light")})
	require.NoError(t, err)
	assert.Equal(t, "en", st.Language)
	assert.Equal(t, "light", st.Theme)
	assert.True(t, st.SoundEnabled)
	assert.True(t, st.NotificationsEnabled)

	_, err = s.CreateSettings(ctx, key, domain.SettingsPatch{})
	assert.True(t, domain.IsConflict(err))

	off := false
	st, err = s.UpdateSettings(ctx, key, domain.SettingsPatch{SoundEnabled: &off})
	require.NoError(t, err)
	assert.False(t, st.SoundEnabled)
	assert.Equal(t, "light", st.Theme)

	_, err = s.Settings(ctx, domain.LookupByID(999))
	assert.True(t, domain.IsNotFound(err))
}

func TestAdminList_ClampsLimit(t *testing.T) {
	m := &mockUserRepo{}
	s := NewUserService(m, nil, 0)
	ctx := context.Background()
	m.On("ListPage", ctx, 0, 20, "x", true).Return([]domain.User{}, int64(0), nil).Twice()

	_, _, err := s.AdminList(ctx, -5, 1000, "x", true)
	require.NoError(t, err)
	_, _, err = s.AdminList(ctx, 0, 0, "x", true)
	require.NoError(t, err)
	m.AssertExpectations(t)
}
