package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-social/internal/domain"
	"arena-social/internal/testutil"
)

func strp(s string) *string { return &s }

func TestUserRepo_CreateDuplicateConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.User{Username: "alice", Email: strp("alice@x.com"), AuthMethod: domain.AuthLocal}))

	err := r.Create(ctx, &domain.User{Username: "alice", Email: strp("other@x.com"), AuthMethod: domain.AuthLocal})
	assert.True(t, domain.IsConflict(err))
	err = r.Create(ctx, &domain.User{Username: "alice2", Email: strp("alice@x.com"), AuthMethod: domain.AuthLocal})
	assert.True(t, domain.IsConflict(err))

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "alice").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUserRepo_FindByEveryKey(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "bob")

	for _, key := range []domain.UserLookupKey{
		domain.LookupByID(u.ID),
		{Kind: domain.ByUsername, Value: "bob"},
		{Kind: domain.ByEmail, Value: "bob@example.com"},
	} {
		got, err := r.Find(ctx, key)
		require.NoError(t, err, key.String())
		assert.Equal(t, u.ID, got.ID)
	}

	_, err := r.Find(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "nobody"})
	assert.True(t, domain.IsNotFound(err))
}

func TestUserRepo_UpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "carol")
	testutil.CreateUser(t, db, "dave")

	bio := "pong enjoyer"
	on := true
	require.NoError(t, r.UpdateProfile(ctx, a.ID, domain.ProfilePatch{Biography: &bio, TwoFAEnabled: &on}))
	got, err := r.Find(ctx, domain.LookupByID(a.ID))
	require.NoError(t, err)
	assert.Equal(t, "pong enjoyer", got.Biography)
	assert.True(t, got.TwoFAEnabled)
	assert.Equal(t, "carol", got.Username)

	err = r.UpdateProfile(ctx, a.ID, domain.ProfilePatch{Username: strp("dave")})
	assert.True(t, domain.IsConflict(err))

	err = r.UpdateAvatar(ctx, 999, "x.png")
	assert.True(t, domain.IsNotFound(err))
}

func TestUserRepo_Anonymize(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "erin")

	before, err := r.Anonymize(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", before.Username)

	_, err = r.Find(ctx, domain.LookupByID(u.ID))
	assert.True(t, domain.IsNotFound(err))
	_, err = r.FindByEmail(ctx, "erin@example.com")
	assert.True(t, domain.IsNotFound(err))

	var raw domain.User
	require.NoError(t, db.Unscoped().First(&raw, u.ID).Error)
	assert.Equal(t, "deleted_user_"+itoa(u.ID), raw.Username)
	assert.Nil(t, raw.Email)
	assert.Nil(t, raw.Password)
	assert.True(t, raw.Anonymized)
	assert.True(t, raw.DeletedAt.Valid)

	taken, err := r.UsernameTaken(ctx, raw.Username)
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = r.Anonymize(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))

	// the freed email can be registered again
	require.NoError(t, r.Create(ctx, &domain.User{Username: "erin", Email: strp("erin@example.com"), AuthMethod: domain.AuthLocal}))
}

func TestUserRepo_ListPage(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()
	for _, n := range []string{"anna", "annie", "zed"} {
		testutil.CreateUser(t, db, n)
	}
	z, err := r.Find(ctx, domain.UserLookupKey{Kind: domain.ByUsername, Value: "zed"})
	require.NoError(t, err)
	_, err = r.Anonymize(ctx, z.ID)
	require.NoError(t, err)

	us, total, err := r.ListPage(ctx, 0, 10, "ann", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, us, 2)

	_, total, err = r.ListPage(ctx, 0, 10, "", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = r.ListPage(ctx, 0, 10, "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserRepo_StatsAndSettings(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewUserRepo(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "fay")

	st, err := r.EnsureStat(ctx, u.ID)
	require.NoError(t, err)
	again, err := r.EnsureStat(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, again.ID)

	got, err := r.Find(ctx, domain.LookupByID(u.ID))
	require.NoError(t, err)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 0, got.Stats.Wins)

	_, err = r.FindSettings(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))

	s := &domain.Settings{UserID: u.ID, Language: "en", Theme: "dark", SoundEnabled: false, NotificationsEnabled: true}
	require.NoError(t, r.CreateSettings(ctx, s))
	err = r.CreateSettings(ctx, &domain.Settings{UserID: u.ID, Language: "fr"})
	assert.True(t, domain.IsConflict(err))

	s.Theme = "light"
	require.NoError(t, r.SaveSettings(ctx, s))
	loaded, err := r.FindSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.Theme)
	assert.False(t, loaded.SoundEnabled)
	assert.True(t, loaded.NotificationsEnabled)
}
